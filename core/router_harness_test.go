package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/dvnet/state"
	"github.com/google/go-cmp/cmp"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

type RouterHarness struct {
	actions   []HarnessEvent
	published []RouterEvent
}

func (h *RouterHarness) SendUpdate(pkt state.Packet) {
	h.actions = append(h.actions, MakeEvent("SEND_UPDATE", pkt.Dst, pkt.MinCost))
}

func (h *RouterHarness) PublishTable(event RouterEvent, table *state.DistanceTable) {
	h.published = append(h.published, event)
}

func (h *RouterHarness) Log(event RouterEvent, desc string, args ...any) {
	x := make([]any, 0)
	x = append(x, event)
	x = append(x, desc)
	x = append(x, args...)
	h.actions = append(h.actions, MakeEvent("LOG", x...))
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

// GetActions returns every non-log action since the last call
func (h *RouterHarness) GetActions() HarnessEvents {
	x := make([]HarnessEvent, 0)
	for _, action := range h.actions {
		if action.Message != "LOG" {
			x = append(x, action)
		}
	}

	h.actions = make([]HarnessEvent, 0)
	return x
}

// GetLogs returns the router events logged since the last call to GetActions
func (h *RouterHarness) GetLogs() []RouterEvent {
	x := make([]RouterEvent, 0)
	for _, action := range h.actions {
		if action.Message == "LOG" {
			x = append(x, action.Args[0].(RouterEvent))
		}
	}
	return x
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message == msg {
			if len(event.Args) >= len(args) {
				match := true
				for i, arg := range args {
					if !cmp.Equal(event.Args[i], arg) {
						match = false
						break
					}
				}
				if match {
					return true
				}
			}
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

// MakeRouter creates and initializes node id of the reference topology
func MakeRouter(h *RouterHarness, id state.NodeId) *state.RouterState {
	cfg := state.ReferenceCfg()
	rs := &state.RouterState{Id: id}
	InitRouter(rs, h, cfg.GetLinks(id))
	return rs
}

func Vec(costs ...state.Cost) []state.Cost {
	return costs
}

func (h *RouterHarness) Update(rs *state.RouterState, from state.NodeId, costs ...state.Cost) bool {
	return HandleUpdate(rs, h, state.Packet{
		Src:     from,
		Dst:     rs.Id,
		MinCost: costs,
	})
}
