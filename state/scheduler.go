package state

import (
	"fmt"
	"time"
)

// Dispatch Dispatches the function to run on the node's goroutine without waiting for it to complete.
// It reports false if the node stopped before accepting the function.
func (e *Env) Dispatch(fun func(*State) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.Cancel(fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()
	if e.Context.Err() != nil {
		return false
	}
	select {
	case e.DispatchChannel <- fun:
		return true
	case <-e.Context.Done():
		return false
	}
}

// DispatchWait Dispatches the function to run on the node's goroutine and wait for it to complete
func (e *Env) DispatchWait(fun func(*State) (any, error)) (any, error) {
	ret := make(chan Pair[any, error], 1)
	if !e.Dispatch(func(s *State) error {
		res, err := fun(s)
		ret <- Pair[any, error]{res, err}
		return err
	}) {
		return nil, e.Context.Err()
	}
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-e.Context.Done():
		return nil, e.Context.Err()
	}
}

// ScheduleTask Dispatches the function after delay
func (e *Env) ScheduleTask(fun func(*State) error, delay time.Duration) {
	time.AfterFunc(delay, func() {
		e.Dispatch(fun)
	})
}
