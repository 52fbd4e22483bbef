package main

import (
	"github.com/spf13/cobra"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/internal/scenario"
	"github.com/discochess/contagion/internal/store"
)

// parameterFlags binds one flag per simulation parameter. Only flags the
// user set override the base parameters.
type parameterFlags struct {
	values contagion.Parameters
}

func (f *parameterFlags) register(cmd *cobra.Command) {
	d := contagion.DefaultParameters()
	fs := cmd.Flags()
	fs.IntVar(&f.values.TimespanDays, "timespan-days", d.TimespanDays, "days simulated after day 0")
	fs.Int64Var(&f.values.Population, "population", d.Population, "size of the population")
	fs.Float64Var(&f.values.DailyContacts, "daily-contacts", d.DailyContacts, "contacts per ill person per day")
	fs.Float64Var(&f.values.TransmissionProbability, "transmission-probability", d.TransmissionProbability, "chance of transmission per contact, in percent")
	fs.Float64Var(&f.values.IllnessDuration, "illness-duration", d.IllnessDuration, "days from infection to recovery or death")
	fs.Float64Var(&f.values.AverageMortalityRate, "average-mortality-rate", d.AverageMortalityRate, "mortality among the ill, in percent")
	fs.Int64Var(&f.values.TotalAvailableBeds, "total-available-beds", d.TotalAvailableBeds, "hospital beds")
	fs.Float64Var(&f.values.IncreasingMortalityRate, "increasing-mortality-rate", d.IncreasingMortalityRate, "extra mortality above capacity, in percent")
}

// apply copies the flags set on cmd into p.
func (f *parameterFlags) apply(cmd *cobra.Command, p *contagion.Parameters) {
	changed := cmd.Flags().Changed
	if changed("timespan-days") {
		p.TimespanDays = f.values.TimespanDays
	}
	if changed("population") {
		p.Population = f.values.Population
	}
	if changed("daily-contacts") {
		p.DailyContacts = f.values.DailyContacts
	}
	if changed("transmission-probability") {
		p.TransmissionProbability = f.values.TransmissionProbability
	}
	if changed("illness-duration") {
		p.IllnessDuration = f.values.IllnessDuration
	}
	if changed("average-mortality-rate") {
		p.AverageMortalityRate = f.values.AverageMortalityRate
	}
	if changed("total-available-beds") {
		p.TotalAvailableBeds = f.values.TotalAvailableBeds
	}
	if changed("increasing-mortality-rate") {
		p.IncreasingMortalityRate = f.values.IncreasingMortalityRate
	}
}

// baseInputs returns the parameters and seed of the named scenario, or the
// defaults when name is empty.
func baseInputs(cmd *cobra.Command, st store.Store, name string) (contagion.Parameters, contagion.Seed, error) {
	if name == "" {
		return contagion.DefaultParameters(), contagion.DefaultSeed(), nil
	}
	sc, err := scenario.Load(cmd.Context(), st, name)
	if err != nil {
		return contagion.Parameters{}, contagion.Seed{}, err
	}
	return sc.Parameters, sc.Seed, nil
}
