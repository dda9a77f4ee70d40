package toon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"toon_bridge/internal/models"
)

// Top-level payload members that select a domain parser.
const (
	keyPowerUsage      = "powerUsage"
	keyGasMeter        = "dev_2.1"
	keySingleTariff    = "dev_2.2"
	keyPeakTariff      = "dev_2.4"
	keyOffPeakTariff   = "dev_2.6"
	keyWater           = "water"
	keyCurrentTemp     = "currentTemp"
	keyCurrentSetpoint = "currentSetpoint"
	keyActiveState     = "activeState"
)

// Domain names used in errors and logs.
const (
	DomainPower      = "power_usage"
	DomainGas        = "gas_usage"
	DomainWater      = "water"
	DomainThermostat = "thermostat_info"
)

// Merge applies a raw status payload to snap. Every domain present in the
// payload is decoded on its own; domains that decode replace their sub-record
// and contribute assignments, domains that fail leave their sub-record as it
// was and are reported in the returned error. A payload with no known domain
// is a no-op.
func Merge(snap models.DeviceStateSnapshot, raw []byte) (models.DeviceStateSnapshot, []models.CapabilityAssignment, error) {
	root, err := decodeRoot(raw)
	if err != nil {
		return snap, nil, err
	}

	var (
		out  []models.CapabilityAssignment
		errs []error
	)

	if sec, ok, err := decodePower(root); err != nil {
		errs = append(errs, err)
	} else if ok {
		snap.PowerUsage = sec.record
		out = append(out, sec.assignments...)
	}

	if sec, ok, err := decodeGas(root); err != nil {
		errs = append(errs, err)
	} else if ok {
		snap.GasUsage = sec.record
		out = append(out, sec.assignments...)
	}

	if sec, ok, err := decodeWater(root); err != nil {
		errs = append(errs, err)
	} else if ok {
		snap.Water = sec.record
		out = append(out, sec.assignments...)
	}

	if sec, ok, err := decodeThermostat(root); err != nil {
		errs = append(errs, err)
	} else if ok {
		snap.ThermostatInfo = sec.record
		out = append(out, sec.assignments...)
	}

	return snap, out, errors.Join(errs...)
}

// decodeRoot returns the top-level members of an object payload. Valid JSON
// that is not an object has no members.
func decodeRoot(raw []byte) (map[string]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrMalformedPayload)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return root, nil
}

type section[T any] struct {
	record      *T
	assignments []models.CapabilityAssignment
}

func has(root map[string]json.RawMessage, key string) bool {
	_, ok := root[key]
	return ok
}

// decodeObject decodes root[key] into dst and requires it to be a JSON object.
func decodeObject(root map[string]json.RawMessage, key string, dst any) error {
	m, ok := root[key]
	if !ok {
		return fmt.Errorf("missing %q", key)
	}
	m = bytes.TrimSpace(m)
	if len(m) == 0 || m[0] != '{' {
		return fmt.Errorf("%q is not an object", key)
	}
	if err := json.Unmarshal(m, dst); err != nil {
		return fmt.Errorf("%q: %v", key, err)
	}
	return nil
}

type usageBlock struct {
	Value       *Reading `json:"value"`
	DayUsage    *Reading `json:"dayUsage"`
	DayLowUsage *Reading `json:"dayLowUsage"`
}

type electricityRegister struct {
	CurrentElectricityQuantity *Reading `json:"CurrentElectricityQuantity"`
}

type gasRegister struct {
	CurrentGasQuantity *Reading `json:"CurrentGasQuantity"`
}

func decodePower(root map[string]json.RawMessage) (section[models.PowerUsage], bool, error) {
	var sec section[models.PowerUsage]
	hasUsage := has(root, keyPowerUsage)
	hasTariffs := has(root, keyPeakTariff) || has(root, keyOffPeakTariff)
	if !hasUsage && !hasTariffs {
		return sec, false, nil
	}

	rec := &models.PowerUsage{}

	if hasUsage {
		var u usageBlock
		if err := decodeObject(root, keyPowerUsage, &u); err != nil {
			return sec, false, malformed(DomainPower, "%v", err)
		}
		if w, ok := numeric(u.Value); ok {
			rec.InstantaneousWatts = &w
			sec.assignments = append(sec.assignments, assign(models.CapMeasurePower, w))
		}
		day, dayOK := numeric(u.DayUsage)
		low, lowOK := numeric(u.DayLowUsage)
		if dayOK {
			rec.DayUsageWh = &day
		}
		if lowOK {
			rec.DayLowUsageWh = &low
		}
		if dayOK && lowOK {
			sec.assignments = append(sec.assignments, assign(models.CapMeterPower, WattHoursToKwh(day+low)))
		}
	}

	if hasTariffs {
		var peak, offPeak electricityRegister
		if err := decodeObject(root, keyPeakTariff, &peak); err != nil {
			return sec, false, malformed(DomainPower, "%v", err)
		}
		if err := decodeObject(root, keyOffPeakTariff, &offPeak); err != nil {
			return sec, false, malformed(DomainPower, "%v", err)
		}

		// Single-tariff meters report NaN for the peak register; the reading
		// then lives in dev_2.2.
		if p := peak.CurrentElectricityQuantity; p != nil {
			fallback := NaNReading()
			if p.IsNaN() {
				var single electricityRegister
				if err := decodeObject(root, keySingleTariff, &single); err != nil {
					return sec, false, malformed(DomainPower, "peak register is NaN and %v", err)
				}
				if single.CurrentElectricityQuantity == nil || single.CurrentElectricityQuantity.IsNaN() {
					return sec, false, malformed(DomainPower, "peak register is NaN and %q has no reading", keySingleTariff)
				}
				fallback = *single.CurrentElectricityQuantity
			}
			wh := fallback.Float64()
			if !p.IsNaN() {
				wh = p.Float64()
			}
			rec.PeakMeterWh = &wh
			sec.assignments = append(sec.assignments, assign(models.CapMeterPowerPeak, TariffMeterValue(*p, fallback)))
		}

		// No single-tariff fallback for off-peak.
		if op := offPeak.CurrentElectricityQuantity; op != nil && !op.IsNaN() {
			wh := op.Float64()
			rec.OffPeakMeterWh = &wh
			sec.assignments = append(sec.assignments, assign(models.CapMeterPowerOffPeak, TariffMeterValue(*op, NaNReading())))
		}
	}

	sec.record = rec
	return sec, true, nil
}

func decodeGas(root map[string]json.RawMessage) (section[models.GasUsage], bool, error) {
	var sec section[models.GasUsage]
	if !has(root, keyGasMeter) {
		return sec, false, nil
	}
	var g gasRegister
	if err := decodeObject(root, keyGasMeter, &g); err != nil {
		return sec, false, malformed(DomainGas, "%v", err)
	}
	liters, ok := numeric(g.CurrentGasQuantity)
	if !ok {
		return sec, false, malformed(DomainGas, "%q has no CurrentGasQuantity", keyGasMeter)
	}
	sec.record = &models.GasUsage{MeterLiters: liters}
	sec.assignments = []models.CapabilityAssignment{
		assign(models.CapMeterGas, math.Trunc(liters/1000)), // L -> m3
	}
	return sec, true, nil
}

func decodeWater(root map[string]json.RawMessage) (section[models.Water], bool, error) {
	var sec section[models.Water]
	if !has(root, keyWater) {
		return sec, false, nil
	}
	var w struct {
		Flow  *Reading `json:"flow"`
		Value *Reading `json:"value"`
	}
	if err := decodeObject(root, keyWater, &w); err != nil {
		return sec, false, malformed(DomainWater, "%v", err)
	}
	rec := &models.Water{}
	if flow, ok := numeric(w.Flow); ok {
		rec.FlowLitersPerMin = &flow
		sec.assignments = append(sec.assignments, assign(models.CapMeasureWater, flow))
	}
	if total, ok := numeric(w.Value); ok {
		rec.MeterLiters = &total
		sec.assignments = append(sec.assignments, assign(models.CapMeterWater, total))
	}
	sec.record = rec
	return sec, true, nil
}

func decodeThermostat(root map[string]json.RawMessage) (section[models.ThermostatInfo], bool, error) {
	var sec section[models.ThermostatInfo]
	if !has(root, keyCurrentTemp) || !has(root, keyCurrentSetpoint) {
		return sec, false, nil
	}
	temp, ok := decodeReading(root[keyCurrentTemp])
	if !ok {
		return sec, false, malformed(DomainThermostat, "%s is not a temperature", keyCurrentTemp)
	}
	setpoint, ok := decodeReading(root[keyCurrentSetpoint])
	if !ok {
		return sec, false, malformed(DomainThermostat, "%s is not a temperature", keyCurrentSetpoint)
	}

	rec := &models.ThermostatInfo{
		CurrentTemperatureCentiDeg: int(math.Round(temp.Float64())),
		TargetTemperatureCentiDeg:  int(math.Round(setpoint.Float64())),
	}
	sec.assignments = []models.CapabilityAssignment{
		assign(models.CapMeasureTemperature, CentiDegToDecimal(temp.Float64())),
		assign(models.CapTargetTemperature, CentiDegToDecimal(setpoint.Float64())),
	}

	if rawState, ok := root[keyActiveState]; ok {
		var sc stateCode
		_ = json.Unmarshal(rawState, &sc)
		// Unknown codes are reported as a nil state, not as an error.
		var state any
		if sc.known {
			code := sc.code
			rec.ActiveStateCode = &code
			if name, ok := EnumNameForCode(TemperatureStates, code); ok {
				state = name
			}
		}
		sec.assignments = append(sec.assignments, assign(models.CapTemperatureState, state))
	}

	sec.record = rec
	return sec, true, nil
}

// decodeReading decodes a single numeric member; null, NaN and non-numeric
// values are rejected.
func decodeReading(raw json.RawMessage) (Reading, bool) {
	var r *Reading
	if err := json.Unmarshal(raw, &r); err != nil || r == nil || r.IsNaN() {
		return Reading{}, false
	}
	return *r, true
}

func numeric(r *Reading) (float64, bool) {
	if r == nil || r.IsNaN() {
		return 0, false
	}
	return r.Float64(), true
}

func assign(capability string, value any) models.CapabilityAssignment {
	return models.CapabilityAssignment{Capability: capability, Value: value}
}
