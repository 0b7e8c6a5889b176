// Package admin implements the station's read-only introspection and
// command HTTP surface (spec.md §6): cell/user/HARQ introspection plus the
// cell_gain/cell_earfcn/handover commands.
//
// Adapted from sarchlab-akita's monitoring/monitor.go: the same
// gorilla/mux router-plus-listener shape, shirou/gopsutil for process
// resource stats, net/http/pprof + google/pprof/profile for live CPU
// profiling, and pkg/browser to open the dashboard from the CLI. Where the
// teacher's Monitor reflects over arbitrary sim.Component fields with
// reflect/goseth, this Admin exposes a fixed, typed set of station
// operations instead: the control plane has a small, known command
// surface, so there is no reflection-based field walker to adapt here.
package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	// registers the pprof handlers on the default mux
	_ "net/http/pprof"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/google/pprof/profile"
	"github.com/sarchlab/enbstack/mobility"
	"github.com/sarchlab/enbstack/station"
	"github.com/sarchlab/enbstack/tracing"
)

var log = tracing.NewLogger("admin")

// Admin serves the station's HTTP command and introspection surface.
type Admin struct {
	station    *station.Station
	portNumber int
}

// New creates an Admin over st, listening on portNumber (0 picks a random
// free port, matching the teacher's WithPortNumber convention).
func New(st *station.Station, portNumber int) *Admin {
	return &Admin{station: st, portNumber: portNumber}
}

// StartServer starts the HTTP server in the background, returning the
// listener's address so callers (and tests) can reach it without racing
// the random-port choice.
func (a *Admin) StartServer() (string, error) {
	r := mux.NewRouter()
	r.HandleFunc("/api/users", a.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/user/{rnti}", a.userDetail).Methods(http.MethodGet)
	r.HandleFunc("/api/cell/{idx}/gain", a.setCellGain).Methods(http.MethodPost)
	r.HandleFunc("/api/cell/{idx}/earfcn", a.setCellEARFCN).Methods(http.MethodPost)
	r.HandleFunc("/api/handover", a.triggerHandover).Methods(http.MethodPost)
	r.HandleFunc("/api/resource", a.resourceUsage).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", a.collectProfile).Methods(http.MethodGet)
	// mounted per-instance rather than registered on the process-global
	// DefaultServeMux, so multiple Admins (e.g. one per station under test)
	// never collide over "/debug/pprof/" registration.
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	actualPort := ":0"
	if a.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(a.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	addr := listener.Addr().String()
	fmt.Fprintf(os.Stderr, "enbstack admin surface listening on http://%s\n", addr)

	go func() {
		if err := http.Serve(listener, r); err != nil {
			log.Error(err, "admin server stopped")
		}
	}()

	return addr, nil
}

// OpenDashboard opens addr in the operator's default browser, matching the
// teacher's operator-ergonomics touch for local debugging sessions.
func OpenDashboard(addr string) error {
	return browser.OpenURL("http://" + addr + "/")
}

func (a *Admin) listUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, a.station.Users())
}

type userDetailRsp struct {
	RNTI           uint16   `json:"rnti"`
	State          string   `json:"state"`
	ActiveCarriers []uint8  `json:"active_carriers"`
}

func (a *Admin) userDetail(w http.ResponseWriter, r *http.Request) {
	rnti, err := parseRNTI(mux.Vars(r)["rnti"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, ok := a.station.User(rnti)
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, userDetailRsp{
		RNTI:           entry.RNTI,
		State:          entry.RRC.State().String(),
		ActiveCarriers: entry.Ctx.ActiveCarriers(),
	})
}

type gainReq struct {
	GainDB float64 `json:"gain_db"`
}

func (a *Admin) setCellGain(w http.ResponseWriter, r *http.Request) {
	idx, err := parseCarrierIdx(mux.Vars(r)["idx"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req gainReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.station.SetCellGain(idx, req.GainDB); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type earfcnReq struct {
	DLEarfcn uint32 `json:"dl_earfcn"`
	ULEarfcn uint32 `json:"ul_earfcn"`
}

func (a *Admin) setCellEARFCN(w http.ResponseWriter, r *http.Request) {
	idx, err := parseCarrierIdx(mux.Vars(r)["idx"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req earfcnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.station.SetCellEARFCN(idx, req.DLEarfcn, req.ULEarfcn); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type handoverReq struct {
	RNTI     uint16 `json:"rnti"`
	ObjectID uint8  `json:"object_id"`
	PCI      uint16 `json:"pci"`
}

func (a *Admin) triggerHandover(w http.ResponseWriter, r *http.Request) {
	var req handoverReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report := mobility.MeasurementReport{RNTI: req.RNTI, ObjectID: req.ObjectID, PCI: req.PCI}
	res, err := a.station.TriggerHandover(report, nil, func(uint16) []byte { return nil })
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, res)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (a *Admin) resourceUsage(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{CPUPercent: cpuPercent, MemorySize: mem.RSS})
}

func (a *Admin) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)
	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(err, "failed to encode response")
	}
}

func parseRNTI(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid rnti %q: %w", s, err)
	}
	return uint16(n), nil
}

func parseCarrierIdx(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid carrier index %q: %w", s, err)
	}
	return uint8(n), nil
}
