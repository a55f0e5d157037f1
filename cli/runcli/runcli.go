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

// Package runcli runs the interactive console on top of readline.
package runcli

import (
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"github.com/openthread/ot-linkbudget/logger"
)

type CliHandler interface {
	HandleCommand(cmd string, output io.Writer) error
	GetPrompt() string
}

type CliOptions struct {
	EchoInput   bool
	HistoryFile string // empty to keep history in memory only
	Stdin       *os.File
	Stdout      *os.File
}

func DefaultCliOptions() *CliOptions {
	return &CliOptions{
		EchoInput: false,
		Stdin:     nil,
		Stdout:    nil,
	}
}

// Console is one run of the console. Stop may be called from another goroutine.
type Console struct {
	Started chan struct{}

	options          *CliOptions
	readlineInstance *readline.Instance
	closed           chan struct{}
}

func NewConsole(options *CliOptions) *Console {
	if options == nil {
		options = DefaultCliOptions()
	}
	if options.Stdin == nil {
		options.Stdin = os.Stdin
	}
	if options.Stdout == nil {
		options.Stdout = os.Stdout
	}
	return &Console{
		Started: make(chan struct{}),
		options: options,
		closed:  make(chan struct{}),
	}
}

func (c *Console) RestorePrompt() {
	select {
	case <-c.Started:
		if c.readlineInstance != nil {
			c.readlineInstance.Refresh()
		}
	default:
	}
}

// OnStdout redraws the prompt after log output cleared the console line.
func (c *Console) OnStdout() {
	c.RestorePrompt()
}

// Stop makes a running Run return, and waits for it.
func (c *Console) Stop() {
	<-c.Started
	// readline.Close() can block while Readline() is waiting: end the input instead.
	_, _ = c.options.Stdin.WriteString("\003\n")
	_ = c.options.Stdin.Close()
	logger.Debugf("waiting for console to stop ...")
	<-c.closed
}

// Run reads and handles commands until end of input, an interrupt on an empty line, or a handler
// error.
func (c *Console) Run(handler CliHandler) error {
	defer logger.Debugf("console exit.")
	defer close(c.closed)

	startedOnce := false
	started := func() {
		if !startedOnce {
			startedOnce = true
			close(c.Started)
		}
	}
	defer started()

	stdin, stdout := c.options.Stdin, c.options.Stdout
	for _, f := range []*os.File{stdin, stdout} {
		fd := int(f.Fd())
		if !readline.IsTerminal(fd) {
			continue
		}
		state, err := readline.GetState(fd)
		if err != nil {
			return errors.Wrapf(err, "terminal state")
		}
		defer func() {
			_ = readline.Restore(fd, state)
		}()
	}

	readlineConfig := &readline.Config{
		Prompt:          handler.GetPrompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		HistoryFile:     c.options.HistoryFile,

		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			switch r {
			// block CtrlZ feature
			case readline.CharCtrlZ:
				return r, false
			}
			return r, true
		},
		Stdin:  stdin,
		Stdout: stdout,
	}

	l, err := readline.NewEx(readlineConfig)
	if err != nil {
		return err
	}
	defer func() {
		_ = l.Close()
	}()
	c.readlineInstance = l
	started()

	for {
		// update the prompt
		l.SetPrompt(handler.GetPrompt())

		line, err := l.Readline()

		if len(line) > 0 && line[0] == readline.CharInterrupt {
			return nil
		} else if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue // Ctrl-C in a partly typed line only drops the line.
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if c.options.EchoInput {
			if _, err := stdout.WriteString(line + "\n"); err != nil {
				return err
			}
		}

		cmd := strings.TrimSpace(line)
		if len(cmd) == 0 || strings.HasPrefix(cmd, "#") {
			continue
		}

		if err = handler.HandleCommand(cmd, l.Stdout()); err != nil {
			return err
		}

		_ = stdout.Sync()
	}
}

// RunCli runs a console on options until it stops.
func RunCli(handler CliHandler, options *CliOptions) error {
	return NewConsole(options).Run(handler)
}
