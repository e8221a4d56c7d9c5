package main

import (
	"flag"
	"fmt"

	"github.com/silijon/hexcaster/params"
)

type paramsCommand struct{}

func (cmd *paramsCommand) Name() string {
	return "params"
}

func (cmd *paramsCommand) Help() string {
	return "Show the parameter table"
}

func (cmd *paramsCommand) Register(*flag.FlagSet) {}

var paramNames = map[params.ID]string{
	params.BloomBasePreDb:  "BloomBasePre_dB",
	params.BloomBasePostDb: "BloomBasePost_dB",
	params.BloomPreDepth:   "BloomPreDepth",
	params.BloomPostDepth:  "BloomPostDepth",
	params.EnvAttackMs:     "EnvAttackMs",
	params.EnvReleaseMs:    "EnvReleaseMs",
	params.EqBand1Freq:     "EqBand1Freq",
	params.EqBand1GainDb:   "EqBand1GainDb",
	params.EqBand1Q:        "EqBand1Q",
	params.EqBand2Freq:     "EqBand2Freq",
	params.EqBand2GainDb:   "EqBand2GainDb",
	params.EqBand2Q:        "EqBand2Q",
	params.EqBand3Freq:     "EqBand3Freq",
	params.EqBand3GainDb:   "EqBand3GainDb",
	params.EqBand3Q:        "EqBand3Q",
	params.MasterGainDb:    "MasterGain_dB",
	params.ReverbRoomSize:  "ReverbRoomSize",
	params.ReverbDamping:   "ReverbDamping",
	params.ReverbWetNorm:   "ReverbWet_Norm",
}

func (cmd *paramsCommand) Run() error {
	fmt.Printf("%-4s %-18s %10s %10s %10s\n", "id", "name", "default", "min", "max")
	for id := params.ID(0); id < 64; id++ {
		name, ok := paramNames[id]
		if !ok {
			continue
		}
		info, ok := params.InfoOf(id)
		if !ok {
			continue
		}
		fmt.Printf("%-4d %-18s %10.2f %10.2f %10.2f\n", id, name, info.Default, info.Min, info.Max)
	}
	return nil
}
