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

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-linkbudget/catalog"
	"github.com/openthread/ot-linkbudget/linkbudget"
	"github.com/openthread/ot-linkbudget/logger"
	"github.com/openthread/ot-linkbudget/metrics"
	"github.com/openthread/ot-linkbudget/plot"
	"github.com/openthread/ot-linkbudget/progctx"
	. "github.com/openthread/ot-linkbudget/types"
	"github.com/openthread/ot-linkbudget/web"
)

const (
	Prompt = "> "

	DefaultTableStepM = 10.0
)

type CommandContext struct {
	context.Context
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

// RunnerConfig holds the optional settings of a CmdRunner.
type RunnerConfig struct {
	WebAddr  string // listen address of the dashboard, empty if the web server is not running
	LogLevel string
	Metrics  *metrics.Collector
}

// session is the link selection that the link budget commands work on.
type session struct {
	tech     Technology
	tx       string
	rx       string
	distance float64
	txHeight *float64
	rxHeight *float64
}

type CmdRunner struct {
	ctx     *progctx.ProgCtx
	engine  *linkbudget.Engine
	catalog *catalog.Catalog
	cfg     RunnerConfig
	session session
	help    Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, engine *linkbudget.Engine, cat *catalog.Catalog, cfg RunnerConfig) *CmdRunner {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	return &CmdRunner{
		ctx:     ctx,
		engine:  engine,
		catalog: cat,
		cfg:     cfg,
		session: session{
			tech:     TechShortRange,
			distance: linkbudget.DefaultTargetDistanceM,
		},
		help: newHelp(),
	}
}

func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}

		if err := ParseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	return rt.RunCommand(cmdline, output)
}

func (rt *CmdRunner) GetPrompt() string {
	return rt.session.tech.String() + Prompt
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Context: rt.ctx,
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Tech != nil {
		rt.executeTech(cc, cmd.Tech)
	} else if cmd.Tx != nil {
		rt.executeDevice(cc, "tx", cmd.Tx.Name, &rt.session.tx)
	} else if cmd.Rx != nil {
		rt.executeDevice(cc, "rx", cmd.Rx.Name, &rt.session.rx)
	} else if cmd.Distance != nil {
		rt.executeDistance(cc, cmd.Distance)
	} else if cmd.Height != nil {
		rt.executeHeight(cc, cmd.Height)
	} else if cmd.Devices != nil {
		cc.outputItemsAsYaml(rt.catalog.Devices())
	} else if cmd.Technologies != nil {
		cc.outputItemsAsYaml(rt.engine.Registry().Profiles())
	} else if cmd.Budget != nil {
		rt.executeBudget(cc)
	} else if cmd.PathLoss != nil {
		rt.executeTable(cc, false, cmd.PathLoss.Direction, cmd.PathLoss.Step)
	} else if cmd.Rssi != nil {
		rt.executeTable(cc, true, cmd.Rssi.Direction, cmd.Rssi.Step)
	} else if cmd.Plot != nil {
		rt.executePlot(cc, cmd.Plot)
	} else if cmd.Web != nil {
		rt.executeWeb(cc)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Exit != nil {
		rt.executeExit(cc)
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

func (rt *CmdRunner) executeTech(cc *CommandContext, cmd *TechCmd) {
	if cmd.Name == nil {
		profile, _ := rt.engine.Registry().Lookup(rt.session.tech)
		cc.outputf("%s (%s)\n", rt.session.tech, profile.Label)
		return
	}
	tech := ParseTechnology(unquote(*cmd.Name))
	if _, ok := rt.engine.Registry().Lookup(tech); !ok {
		cc.error(NewInvalidParameterError("technology", "unknown technology %q", unquote(*cmd.Name)))
		return
	}
	rt.session.tech = tech
}

func (rt *CmdRunner) executeDevice(cc *CommandContext, role string, name *string, selected *string) {
	if name == nil {
		if *selected == "" {
			cc.outputf("%s: (none)\n", role)
		} else {
			cc.outputf("%s: %s\n", role, *selected)
		}
		return
	}
	devName := strings.TrimSpace(unquote(*name))
	if _, ok := rt.catalog.Get(devName); !ok {
		cc.error(&UnknownDeviceError{Name: devName})
		return
	}
	*selected = devName
}

func (rt *CmdRunner) executeDistance(cc *CommandContext, cmd *DistanceCmd) {
	if cmd.Value == nil {
		cc.outputf("%s\n", humanize.SIWithDigits(rt.session.distance, 2, "m"))
		return
	}
	if !(*cmd.Value > 0) || math.IsInf(*cmd.Value, 0) {
		cc.error(NewInvalidParameterError("distance", "%v must be > 0", *cmd.Value))
		return
	}
	rt.session.distance = *cmd.Value
}

func (rt *CmdRunner) executeHeight(cc *CommandContext, cmd *HeightCmd) {
	if cmd.Tx == nil && cmd.Rx == nil {
		cfg := rt.engine.Config()
		txH, rxH := cfg.TxHeightM, cfg.RxHeightM
		if rt.session.txHeight != nil {
			txH = *rt.session.txHeight
		}
		if rt.session.rxHeight != nil {
			rxH = *rt.session.rxHeight
		}
		cc.outputf("tx: %v m\nrx: %v m\n", txH, rxH)
		return
	}
	if cmd.Tx != nil && !(*cmd.Tx > 0) {
		cc.error(NewInvalidParameterError("tx_height", "%v must be > 0", *cmd.Tx))
		return
	}
	if cmd.Rx != nil && !(*cmd.Rx > 0) {
		cc.error(NewInvalidParameterError("rx_height", "%v must be > 0", *cmd.Rx))
		return
	}
	if cmd.Tx != nil {
		rt.session.txHeight = cmd.Tx
	}
	if cmd.Rx != nil {
		rt.session.rxHeight = cmd.Rx
	}
}

func (rt *CmdRunner) request() linkbudget.Request {
	return linkbudget.Request{
		Technology:      rt.session.tech,
		TransmitterName: rt.session.tx,
		ReceiverName:    rt.session.rx,
		TargetDistanceM: rt.session.distance,
		TxHeightM:       rt.session.txHeight,
		RxHeightM:       rt.session.rxHeight,
	}
}

// calculate runs the engine on the session. It returns nil if there is no result to show, after
// printing why.
func (rt *CmdRunner) calculate(cc *CommandContext) *linkbudget.Result {
	req := rt.request()
	start := time.Now()
	resp, err := rt.engine.Calculate(req)
	rt.cfg.Metrics.Observe(req.Technology, resp, err, time.Since(start))
	if err != nil {
		cc.error(err)
		return nil
	}
	if resp.Outcome != linkbudget.OutcomeResult {
		cc.outputf("%s: %s\n", resp.Outcome, resp.Message)
		return nil
	}
	return resp.Result
}

func (rt *CmdRunner) executeBudget(cc *CommandContext) {
	r := rt.calculate(cc)
	if r == nil {
		return
	}
	cc.outputf("%s at %s, %s -> %s at %s\n", r.Technology, humanize.SIWithDigits(r.FrequencyMHz*1e6, 2, "Hz"),
		r.Transmitter.Name, r.Receiver.Name, humanize.SIWithDigits(r.TargetDistanceM, 2, "m"))
	cc.outputItemsAsYaml(r.Summary())
}

func (rt *CmdRunner) executeTable(cc *CommandContext, rssi bool, dirArg *DirectionArg, stepArg *StepArg) {
	dir := Uplink
	if dirArg != nil {
		dir, _ = ParseDirection(dirArg.Dir)
	}
	step := DefaultTableStepM
	if stepArg != nil {
		step = stepArg.Val
	}
	if !(step > 0) {
		cc.error(NewInvalidParameterError("step", "%v must be > 0", step))
		return
	}

	r := rt.calculate(cc)
	if r == nil {
		return
	}

	var names []string
	var columns [][]Sample
	if rssi {
		for _, c := range r.Rssi {
			if c.Direction == dir {
				names = append(names, c.Model.String())
				columns = append(columns, c.Samples)
			}
		}
	} else {
		for _, c := range r.PathLoss {
			if c.Direction == dir {
				names = append(names, c.Model.String())
				columns = append(columns, c.Samples)
			}
		}
	}
	writeTable(cc.output, r.Distances, names, columns, step)
}

// writeTable prints the columns at the distances that are a multiple of step.
func writeTable(w io.Writer, distances linkbudget.DistanceSeries, names []string, columns [][]Sample, step float64) {
	_, _ = fmt.Fprintf(w, "%-10s", "distance")
	for _, name := range names {
		_, _ = fmt.Fprintf(w, " | %-12s", name)
	}
	_, _ = fmt.Fprintln(w)

	for i, d := range distances {
		if math.Abs(math.Remainder(d, step)) > 1e-9 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%-10v", d)
		for _, col := range columns {
			if v, ok := col[i].Get(); ok {
				_, _ = fmt.Fprintf(w, " | %-12.2f", v)
			} else {
				_, _ = fmt.Fprintf(w, " | %-12s", "-")
			}
		}
		_, _ = fmt.Fprintln(w)
	}
}

func (rt *CmdRunner) executePlot(cc *CommandContext, cmd *PlotCmd) {
	kind, ok := plot.ParseKind(cmd.Kind)
	if !ok {
		cc.errorf("unknown chart kind %q", cmd.Kind)
		return
	}
	r := rt.calculate(cc)
	if r == nil {
		return
	}

	renderer, err := plot.NewRenderer(plot.DefaultWidth, plot.DefaultHeight)
	if err != nil {
		cc.error(err)
		return
	}
	var buf bytes.Buffer
	if err = renderer.Render(&buf, plot.ResultChart(r, kind)); err != nil {
		cc.error(err)
		return
	}
	path := unquote(cmd.Path)
	if err = os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%s chart written to %s\n", kind, path)
}

func (rt *CmdRunner) executeWeb(cc *CommandContext) {
	if rt.cfg.WebAddr == "" {
		cc.errorf("web server is not running")
		return
	}
	if err := web.OpenWeb(rt.cfg.WebAddr); err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%s\n", web.DashboardUrl(rt.cfg.WebAddr))
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", rt.cfg.LogLevel)
	} else {
		level, err := logger.ParseLevelString(cmd.Level)
		if err != nil {
			cc.error(err)
			return
		}
		logger.SetLevel(level)
		rt.cfg.LogLevel = cmd.Level
	}
}

func (rt *CmdRunner) executeExit(cc *CommandContext) {
	rt.ctx.Cancel("exit")
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if len(cmd.HelpTopic) > 0 {
		cc.outputStr(rt.help.outputCommandHelp(cmd.HelpTopic))
	} else {
		cc.outputStr(rt.help.outputGeneralHelp())
	}
}
