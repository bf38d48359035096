package model

import (
	"strings"
	"testing"
)

func validBattery() Battery {
	return Battery{
		CapacityMWh:  10,
		PowerMW:      5,
		EtaCharge:    0.95,
		EtaDischarge: 0.95,
		Soc0:         0.5,
		DtHours:      1.0 / 12.0,
	}
}

func TestBatterySetDefaults(t *testing.T) {
	b := Battery{CapacityMWh: 10, PowerMW: 5}
	b.SetDefaults()
	if b.DtHours != DefaultDtHours {
		t.Errorf("DtHours = %v, want %v", b.DtHours, DefaultDtHours)
	}
	if b.EtaCharge != DefaultEta || b.EtaDischarge != DefaultEta {
		t.Errorf("efficiencies = %v/%v, want %v", b.EtaCharge, b.EtaDischarge, DefaultEta)
	}
	if b.Soc0 != DefaultSoc0 {
		t.Errorf("Soc0 = %v, want %v", b.Soc0, DefaultSoc0)
	}
	if b.SocSteps != 0 {
		t.Errorf("SocSteps = %d, want 0 so the lattice stays auto-scaled", b.SocSteps)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("defaulted battery invalid: %v", err)
	}
}

func TestBatterySetDefaultsKeepsExplicitValues(t *testing.T) {
	b := Battery{CapacityMWh: 10, PowerMW: 5, EtaCharge: 0.8, EtaDischarge: 0.85, Soc0: 0.2, DtHours: 0.25}
	b.SetDefaults()
	if b.EtaCharge != 0.8 || b.EtaDischarge != 0.85 || b.Soc0 != 0.2 || b.DtHours != 0.25 {
		t.Errorf("explicit fields overwritten: %+v", b)
	}
}

func TestBatteryValidate(t *testing.T) {
	if err := validBattery().Validate(); err != nil {
		t.Fatalf("valid battery rejected: %v", err)
	}

	cases := []struct {
		name     string
		mutate   func(*Battery)
		fragment string
	}{
		{"zero capacity", func(b *Battery) { b.CapacityMWh = 0 }, "capacity"},
		{"negative power", func(b *Battery) { b.PowerMW = -1 }, "power"},
		{"zero charge eta", func(b *Battery) { b.EtaCharge = 0 }, "charge efficiency"},
		{"charge eta above one", func(b *Battery) { b.EtaCharge = 1.1 }, "charge efficiency"},
		{"discharge eta above one", func(b *Battery) { b.EtaDischarge = 1.01 }, "discharge efficiency"},
		{"soc0 above one", func(b *Battery) { b.Soc0 = 1.5 }, "initial SoC"},
		{"negative soc0", func(b *Battery) { b.Soc0 = -0.1 }, "initial SoC"},
		{"target above one", func(b *Battery) { f := 1.2; b.SocTarget = &f }, "target SoC"},
		{"negative throughput cost", func(b *Battery) { b.ThroughputCost = -3 }, "throughput cost"},
		{"single soc step", func(b *Battery) { b.SocSteps = 1 }, "soc steps"},
		{"negative soc steps", func(b *Battery) { b.SocSteps = -4 }, "soc steps"},
		{"zero dt", func(b *Battery) { b.DtHours = 0 }, "interval duration"},
	}
	for _, c := range cases {
		b := validBattery()
		c.mutate(&b)
		err := b.Validate()
		if err == nil || !strings.Contains(err.Error(), c.fragment) {
			t.Errorf("%s: err = %v, want mention of %q", c.name, err, c.fragment)
		}
	}

	// Zero power and a pinned target are both legal.
	b := validBattery()
	b.PowerMW = 0
	f := 0.5
	b.SocTarget = &f
	if err := b.Validate(); err != nil {
		t.Errorf("zero power with target rejected: %v", err)
	}
}

func TestOperationString(t *testing.T) {
	cases := map[Operation]string{
		OpHold:         "hold",
		OpCharge:       "charge",
		OpDischarge:    "discharge",
		Operation(127): "unknown",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(op), got, want)
		}
	}
}
