// Command enbstackd runs one eNB control-plane station process.
package main

func main() {
	Execute()
}
