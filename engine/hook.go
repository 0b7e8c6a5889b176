package engine

// HookPos enumerates the sites at which a Hook can be invoked.
type HookPos struct {
	Name string
}

// HookCtx carries the information about the site where a hook fired.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable is anything that accepts Hooks. DispatchEngine invokes its
// hooks before and after each event it handles. This module defines no
// logging or tracing Hook; logging goes through tracing.NewLogger.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookPosBeforeEvent fires before a dispatch event is handled.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent fires after a dispatch event is handled.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// Hook is a piece of logic invoked by a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase implements Hookable for embedding into components.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase creates an empty HookableBase.
func NewHookableBase() *HookableBase {
	return &HookableBase{hooks: make([]Hook, 0)}
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// InvokeHook runs every registered hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
