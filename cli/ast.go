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
	"strconv"

	"github.com/alecthomas/participle"
)

// noinspection GoStructTag
type Command struct {
	Budget       *BudgetCmd       `  @@` //nolint
	Devices      *DevicesCmd      `| @@` //nolint
	Distance     *DistanceCmd     `| @@` //nolint
	Exit         *ExitCmd         `| @@` //nolint
	Height       *HeightCmd       `| @@` //nolint
	Help         *HelpCmd         `| @@` //nolint
	LogLevel     *LogLevelCmd     `| @@` //nolint
	PathLoss     *PathLossCmd     `| @@` //nolint
	Plot         *PlotCmd         `| @@` //nolint
	Rssi         *RssiCmd         `| @@` //nolint
	Rx           *RxCmd           `| @@` //nolint
	Technologies *TechnologiesCmd `| @@` //nolint
	Tech         *TechCmd         `| @@` //nolint
	Tx           *TxCmd           `| @@` //nolint
	Web          *WebCmd          `| @@` //nolint
}

// noinspection GoStructTag
type BudgetCmd struct {
	Cmd struct{} `"budget"` //nolint
}

// noinspection GoStructTag
type DevicesCmd struct {
	Cmd struct{} `"devices"` //nolint
}

// noinspection GoStructTag
type DistanceCmd struct {
	Cmd   struct{} `"distance"`          //nolint
	Value *float64 `[ (@Int|@Float) ]` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

// noinspection GoStructTag
type HeightCmd struct {
	Cmd struct{} `"height"`                  //nolint
	Tx  *float64 `[ "tx" (@Int|@Float) ]` //nolint
	Rx  *float64 `[ "rx" (@Int|@Float) ]` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `"help"`       //nolint
	HelpTopic string   `[ (@Ident) ]` //nolint
}

type LogLevelCmd struct {
	Cmd   struct{} `"log"`                                                 //nolint
	Level string   `[@( "trace"|"debug"|"info"|"warn"|"error"|"off" )]` //nolint
}

// noinspection GoStructTag
type DirectionArg struct {
	Dir string `@( "up"|"uplink"|"down"|"downlink" )` //nolint
}

// noinspection GoStructTag
type StepArg struct {
	Val float64 `"step" (@Int|@Float)` //nolint
}

// noinspection GoStructTag
type PathLossCmd struct {
	Cmd       struct{}      `"pathloss"` //nolint
	Direction *DirectionArg `[ @@ ]`     //nolint
	Step      *StepArg      `[ @@ ]`     //nolint
}

// noinspection GoStructTag
type RssiCmd struct {
	Cmd       struct{}      `"rssi"` //nolint
	Direction *DirectionArg `[ @@ ]` //nolint
	Step      *StepArg      `[ @@ ]` //nolint
}

// noinspection GoStructTag
type PlotCmd struct {
	Cmd  struct{} `"plot"`                                                        //nolint
	Path string   `@String`                                                       //nolint
	Kind string   `[ @( "pathloss"|"uplink"|"downlink"|"up"|"down"|"loss" ) ]` //nolint
}

// noinspection GoStructTag
type TxCmd struct {
	Cmd  struct{} `"tx"`                  //nolint
	Name *string  `[ @(String|Ident) ]` //nolint
}

// noinspection GoStructTag
type RxCmd struct {
	Cmd  struct{} `"rx"`                  //nolint
	Name *string  `[ @(String|Ident) ]` //nolint
}

// noinspection GoStructTag
type TechCmd struct {
	Cmd  struct{} `"tech"`                //nolint
	Name *string  `[ @(String|Ident) ]` //nolint
}

// noinspection GoStructTag
type TechnologiesCmd struct {
	Cmd struct{} `"technologies"` //nolint
}

// noinspection GoStructTag
type WebCmd struct {
	Cmd struct{} `"web"` //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func ParseBytes(b []byte, cmd *Command) error {
	err := commandParser.ParseBytes(b, cmd)
	return err
}

// unquote strips the quotes of a captured String token, if the parser left them in place.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}
