package core

import "github.com/signalsfoundry/laserhazard/model"

// Damage mechanisms named in traces and ExposureLimit.LimitingMechanism.
const (
	mechPhotochemical = "photochemical"
	mechThermal       = "thermal"
	mechRetinalPhoto  = "retinal-photochemical"
	mechRetinalTherm  = "retinal-thermal"
	mechCorneal       = "corneal-thermal"
	mechSkinThermal   = "skin-thermal"
	mechEmission      = "accessible-emission"
)

const (
	wpm2 = model.UnitWattPerM2
	jpm2 = model.UnitJoulePerM2
	watt = model.UnitWatt
	joul = model.UnitJoule
)

// Shared ultraviolet rows for eye and skin.
var (
	uvcRows = []cell{
		{until(1e-9), []term{{coeff: 3e10, unit: wpm2, mechanism: mechPhotochemical}}},
		{forever, []term{{coeff: 30, unit: jpm2, mechanism: mechPhotochemical}}},
	}
	uvbRows = []cell{
		{until(1e-9), []term{{coeff: 3e10, unit: wpm2, mechanism: mechPhotochemical}}},
		{untilT1, []term{{coeff: 1, unit: jpm2, factors: useC1, mechanism: mechThermal}}},
		{forever, []term{{coeff: 1, unit: jpm2, factors: useC2, mechanism: mechPhotochemical}}},
	}
	uvaRows = []cell{
		{until(1e-9), []term{{coeff: 3e10, unit: wpm2, mechanism: mechPhotochemical}}},
		{until(10), []term{{coeff: 1, unit: jpm2, factors: useC1, mechanism: mechThermal}}},
		{until(1e3), []term{{coeff: 1e4, unit: jpm2, mechanism: mechPhotochemical}}},
		{forever, []term{{coeff: 10, unit: wpm2, mechanism: mechPhotochemical}}},
	}
)

// Shared infrared rows (corneal limits) for eye and skin.
var (
	ir1400Rows = []cell{
		{until(1e-9), []term{{coeff: 1e12, unit: wpm2, mechanism: mechCorneal}}},
		{until(1e-3), []term{{coeff: 1e3, unit: jpm2, mechanism: mechCorneal}}},
		{until(10), []term{{coeff: 5.6e3, exponent: 0.25, unit: jpm2, mechanism: mechCorneal}}},
		{forever, []term{{coeff: 1e3, unit: wpm2, mechanism: mechCorneal}}},
	}
	ir1500Rows = []cell{
		{until(1e-9), []term{{coeff: 1e13, unit: wpm2, mechanism: mechCorneal}}},
		{until(10), []term{{coeff: 1e4, unit: jpm2, mechanism: mechCorneal}}},
		{forever, []term{{coeff: 1e3, unit: wpm2, mechanism: mechCorneal}}},
	}
	farIRRows = []cell{
		{until(1e-9), []term{{coeff: 1e11, unit: wpm2, mechanism: mechCorneal}}},
		{until(1e-7), []term{{coeff: 100, unit: jpm2, mechanism: mechCorneal}}},
		{until(10), []term{{coeff: 5.6e3, exponent: 0.25, unit: jpm2, mechanism: mechCorneal}}},
		{forever, []term{{coeff: 1e3, unit: wpm2, mechanism: mechCorneal}}},
	}
)

// Photochemical retinal terms. They only apply below 600 nm.
var (
	retinalPhotoDose  = term{coeff: 100, unit: jpm2, factors: useC3, mechanism: mechRetinalPhoto, belowNm: 600}
	retinalPhotoPower = term{coeff: 1, unit: wpm2, factors: useC3, mechanism: mechRetinalPhoto, belowNm: 600}
)

// pointEyeMPE is the ocular MPE for a source no larger than αmin.
var pointEyeMPE = limitTable{
	RegionUVC: uvcRows,
	RegionUVB: uvbRows,
	RegionUVA: uvaRows,
	RegionVisible: {
		{until(1e-11), []term{{coeff: 1.5e-4, unit: jpm2, mechanism: mechRetinalTherm}}},
		{until(1e-9), []term{{coeff: 2.7e4, exponent: 0.75, unit: jpm2, mechanism: mechRetinalTherm}}},
		{until(1.8e-5), []term{{coeff: 5e-3, unit: jpm2, mechanism: mechRetinalTherm}}},
		{until(10), []term{{coeff: 18, exponent: 0.75, unit: jpm2, mechanism: mechRetinalTherm}}},
		{until(100), []term{retinalPhotoDose, {coeff: 10, unit: wpm2, mechanism: mechRetinalTherm}}},
		{forever, []term{retinalPhotoPower, {coeff: 10, unit: wpm2, mechanism: mechRetinalTherm}}},
	},
	RegionNearIR: {
		{until(1e-11), []term{{coeff: 1.5e-4, unit: jpm2, factors: useC4, mechanism: mechRetinalTherm}}},
		{until(1e-9), []term{{coeff: 2.7e4, exponent: 0.75, unit: jpm2, factors: useC4, mechanism: mechRetinalTherm}}},
		{until(1.8e-5), []term{{coeff: 5e-3, unit: jpm2, factors: useC4, mechanism: mechRetinalTherm}}},
		{until(10), []term{{coeff: 18, exponent: 0.75, unit: jpm2, factors: useC4, mechanism: mechRetinalTherm}}},
		{forever, []term{{coeff: 10, unit: wpm2, factors: useC4, mechanism: mechRetinalTherm}}},
	},
	RegionNearIRLong: {
		{until(1e-11), []term{{coeff: 1.5e-3, unit: jpm2, mechanism: mechRetinalTherm}}},
		{until(1e-9), []term{{coeff: 2.7e5, exponent: 0.75, unit: jpm2, mechanism: mechRetinalTherm}}},
		{until(5e-5), []term{{coeff: 5e-2, unit: jpm2, mechanism: mechRetinalTherm}}},
		{until(10), []term{{coeff: 90, exponent: 0.75, unit: jpm2, mechanism: mechRetinalTherm}}},
		{forever, []term{{coeff: 50, unit: wpm2, mechanism: mechRetinalTherm}}},
	},
	RegionIR1400: ir1400Rows,
	RegionIR1500: ir1500Rows,
	RegionIR1800: ir1400Rows,
	RegionFarIR:  farIRRows,
}

// extendedEyeMPE is the ocular MPE for sources larger than αmin. It only
// covers the retinal hazard band; C6 scales every row and the long-exposure
// thermal limit switches at T2.
var extendedEyeMPE = limitTable{
	RegionVisible: {
		{until(1e-11), []term{{coeff: 1.5e-4, unit: jpm2, factors: useC6, mechanism: mechRetinalTherm}}},
		{until(1e-9), []term{{coeff: 2.7e4, exponent: 0.75, unit: jpm2, factors: useC6, mechanism: mechRetinalTherm}}},
		{until(1.8e-5), []term{{coeff: 5e-3, unit: jpm2, factors: useC6, mechanism: mechRetinalTherm}}},
		{until(10), []term{{coeff: 18, exponent: 0.75, unit: jpm2, factors: useC6, mechanism: mechRetinalTherm}}},
		{untilT2, []term{retinalPhotoDose, {coeff: 18, exponent: 0.75, unit: jpm2, factors: useC6, mechanism: mechRetinalTherm}}},
		{until(100), []term{retinalPhotoDose, {coeff: 18, unit: wpm2, factors: useC6 | useT2Quarter, mechanism: mechRetinalTherm}}},
		{forever, []term{retinalPhotoPower, {coeff: 18, unit: wpm2, factors: useC6 | useT2Quarter, mechanism: mechRetinalTherm}}},
	},
	RegionNearIR: {
		{until(1e-11), []term{{coeff: 1.5e-4, unit: jpm2, factors: useC4 | useC6, mechanism: mechRetinalTherm}}},
		{until(1e-9), []term{{coeff: 2.7e4, exponent: 0.75, unit: jpm2, factors: useC4 | useC6, mechanism: mechRetinalTherm}}},
		{until(1.8e-5), []term{{coeff: 5e-3, unit: jpm2, factors: useC4 | useC6, mechanism: mechRetinalTherm}}},
		{untilT2, []term{{coeff: 18, exponent: 0.75, unit: jpm2, factors: useC4 | useC6, mechanism: mechRetinalTherm}}},
		{forever, []term{{coeff: 18, unit: wpm2, factors: useC4 | useC6 | useT2Quarter, mechanism: mechRetinalTherm}}},
	},
	RegionNearIRLong: {
		{until(1e-11), []term{{coeff: 1.5e-3, unit: jpm2, factors: useC6 | useC7, mechanism: mechRetinalTherm}}},
		{until(1e-9), []term{{coeff: 2.7e5, exponent: 0.75, unit: jpm2, factors: useC6 | useC7, mechanism: mechRetinalTherm}}},
		{until(5e-5), []term{{coeff: 5e-2, unit: jpm2, factors: useC6 | useC7, mechanism: mechRetinalTherm}}},
		{untilT2, []term{{coeff: 90, exponent: 0.75, unit: jpm2, factors: useC6 | useC7, mechanism: mechRetinalTherm}}},
		{forever, []term{{coeff: 90, unit: wpm2, factors: useC6 | useC7 | useT2Quarter, mechanism: mechRetinalTherm}}},
	},
}

// skinMPE has no extended-source branch.
var skinMPE = limitTable{
	RegionUVC:        uvcRows,
	RegionUVB:        uvbRows,
	RegionUVA:        uvaRows,
	RegionVisible:    skinRetinalBandRows,
	RegionNearIR:     skinRetinalBandRows,
	RegionNearIRLong: skinRetinalBandRows,
	RegionIR1400:     ir1400Rows,
	RegionIR1500:     ir1500Rows,
	RegionIR1800:     ir1400Rows,
	RegionFarIR:      farIRRows,
}

var skinRetinalBandRows = []cell{
	{until(1e-9), []term{{coeff: 2e11, unit: wpm2, factors: useC4, mechanism: mechSkinThermal}}},
	{until(1e-7), []term{{coeff: 200, unit: jpm2, factors: useC4, mechanism: mechSkinThermal}}},
	{until(10), []term{{coeff: 1.1e4, exponent: 0.25, unit: jpm2, factors: useC4, mechanism: mechSkinThermal}}},
	{forever, []term{{coeff: 2e3, unit: wpm2, factors: useC4, mechanism: mechSkinThermal}}},
}

// class3BAEL is stated directly as total power or energy at the aperture.
var class3BAEL = limitTable{
	RegionUVC: {
		{until(1e-9), []term{{coeff: 3.8e5, unit: watt, mechanism: mechEmission}}},
		{until(0.25), []term{{coeff: 3.8e-4, unit: joul, mechanism: mechEmission}}},
		{forever, []term{{coeff: 1.5e-3, unit: watt, mechanism: mechEmission}}},
	},
	RegionUVB: {
		{until(1e-9), []term{{coeff: 1.25e4, unit: watt, factors: useC2, mechanism: mechEmission}}},
		{until(0.25), []term{{coeff: 1.25e-5, unit: joul, factors: useC2, mechanism: mechEmission}}},
		{forever, []term{{coeff: 5e-5, unit: watt, factors: useC2, mechanism: mechEmission}}},
	},
	RegionUVA:        class3BFlatRows,
	RegionVisible:    class3BRetinalRows,
	RegionNearIR:     class3BRetinalRows,
	RegionNearIRLong: class3BRetinalRows,
	RegionIR1400:     class3BFlatRows,
	RegionIR1500:     class3BFlatRows,
	RegionIR1800:     class3BFlatRows,
	RegionFarIR:      class3BFlatRows,
}

var (
	class3BFlatRows = []cell{
		{until(1e-9), []term{{coeff: 1.25e8, unit: watt, mechanism: mechEmission}}},
		{until(0.25), []term{{coeff: 0.125, unit: joul, mechanism: mechEmission}}},
		{forever, []term{{coeff: 0.5, unit: watt, mechanism: mechEmission}}},
	}
	class3BRetinalRows = []cell{
		{until(1e-9), []term{{coeff: 3e7, unit: watt, factors: useC4, mechanism: mechEmission}}},
		{untilScaledC4(0.06), []term{{coeff: 0.03, unit: joul, factors: useC4, mechanism: mechEmission}}},
		{forever, []term{{coeff: 0.5, unit: watt, mechanism: mechEmission}}},
	}
)
