// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package progctx tracks the lifetime of the program: cancellation on exit or signal, functions
// to run on cancellation, and the named goroutines to wait for before exiting.
package progctx

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/simonlingoogle/go-simplelogger"
)

// ProgCtx represent the context of a program during it's lifetime.
type ProgCtx struct {
	context.Context
	wg           sync.WaitGroup
	cancel       context.CancelFunc
	routinesLock sync.Mutex
	routines     map[string]int
	deferred     []func()
	cause        error
}

// WaitCount returns the number of goroutines to wait for.
func (ctx *ProgCtx) WaitCount() int {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	total := 0
	for _, c := range ctx.routines {
		total += c
	}
	return total
}

// Routines returns the names of the running goroutines, sorted.
func (ctx *ProgCtx) Routines() []string {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	var names []string
	for name, c := range ctx.routines {
		if c > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Cancel cancels the program context. reason is an error, or any value describing why the program
// exits. Only the first call has effect; it runs the deferred functions in reverse order.
func (ctx *ProgCtx) Cancel(reason interface{}) {
	ctx.routinesLock.Lock()
	if ctx.Err() != nil {
		ctx.routinesLock.Unlock()
		return
	}
	ctx.cancel()
	deferred := ctx.deferred
	ctx.deferred = nil
	if e, ok := reason.(error); ok {
		ctx.cause = e
	}
	ctx.routinesLock.Unlock()

	if ctx.cause != nil {
		simplelogger.Infof("program exit: %+v", ctx.cause)
	} else {
		simplelogger.Infof("program exit: %v", reason)
	}

	for i := len(deferred) - 1; i >= 0; i-- {
		deferred[i]()
	}
}

// Cause returns the error given to Cancel, or nil.
func (ctx *ProgCtx) Cause() error {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()
	return ctx.cause
}

// WaitAdd adds delta goroutines named name to wait for.
func (ctx *ProgCtx) WaitAdd(name string, delta int) {
	ctx.routinesLock.Lock()
	ctx.routines[name] += delta
	ctx.routinesLock.Unlock()

	ctx.wg.Add(delta)
}

// WaitDone notifies that a goroutine named name has finished.
func (ctx *ProgCtx) WaitDone(name string) {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	if ctx.routines[name] <= 0 {
		simplelogger.Panicf("routine %s is not running, should not call WaitDone", name)
	}

	ctx.routines[name] -= 1
	ctx.wg.Done()
}

// Go runs fn in a new goroutine that Wait waits for.
func (ctx *ProgCtx) Go(name string, fn func()) {
	ctx.WaitAdd(name, 1)
	go func() {
		defer ctx.WaitDone(name)
		defer simplelogger.Debugf("routine %s exit.", name)
		fn()
	}()
}

// Wait waits for all goroutines to finish.
func (ctx *ProgCtx) Wait() {
	simplelogger.Debugf("program context waiting routines: %v", ctx.Routines())
	ctx.wg.Wait()
}

// Defer registers f to be called when the program context is cancelled.
func (ctx *ProgCtx) Defer(f func()) {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	if ctx.Err() != nil {
		simplelogger.Panic(errors.Errorf("can not Defer after the program context is done"))
	}
	ctx.deferred = append(ctx.deferred, f)
}

// New creates a new ProgCtx from the parent context, or from the background context if nil.
func New(parent context.Context) *ProgCtx {
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &ProgCtx{
		Context:  ctx,
		cancel:   cancel,
		routines: map[string]int{},
	}
}
