package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
	"github.com/signalsfoundry/laserhazard/kb"
	"github.com/signalsfoundry/laserhazard/model"
)

const (
	catalogPath = "../../configs/lasers.yaml"

	issLine1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9993"
	issLine2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257767"
)

func TestMain(m *testing.M) {
	// Keep a developer's ~/.laserhazard.yaml out of the tests.
	home, err := os.MkdirTemp("", "laserhazard-home")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", home)
	homedir.DisableCache = true
	code := m.Run()
	os.RemoveAll(home)
	os.Exit(code)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := execute(t, args...)
	if err != nil {
		t.Fatalf("laserhazard %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %T: %v\n%s", v, err, s)
	}
	return v
}

func TestMPE_Text(t *testing.T) {
	out := mustExecute(t, "mpe", "-w", "532", "-t", "0.25")
	for _, want := range []string{"MPE", "eye-point", "ok", "J/m²"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMPE_JSON(t *testing.T) {
	out := mustExecute(t, "mpe", "-w", "532", "-t", "0.25", "-o", "json")
	l := decode[model.ExposureLimit](t, out)
	if l.Outcome != model.OutcomeOK || l.Quantity.Unit != model.UnitJoulePerM2 || math.Abs(l.Quantity.Value-6.36) > 0.01 {
		t.Fatalf("limit = %+v", l)
	}
}

func TestMPE_SkinAndClass(t *testing.T) {
	skin := decode[model.ExposureLimit](t, mustExecute(t, "mpe", "-w", "10600", "-t", "10", "--target", "skin", "-o", "json"))
	if !skin.Applicable() {
		t.Fatalf("skin MPE at 10.6 µm = %+v", skin)
	}
	ael := decode[model.ExposureLimit](t, mustExecute(t, "mpe", "-w", "532", "-t", "0.25", "--class", "2", "-o", "json"))
	if ael.Outcome != model.OutcomeOK || ael.Quantity.Unit != model.UnitWatt || math.Abs(ael.Quantity.Value-1e-3) > 1e-9 {
		t.Fatalf("class 2 AEL = %+v", ael)
	}
}

func TestMPE_DefaultExposureTime(t *testing.T) {
	withDefault := mustExecute(t, "mpe", "-w", "532", "-o", "json")
	explicit := mustExecute(t, "mpe", "-w", "532", "-t", "0.25", "-o", "json")
	if withDefault != explicit {
		t.Fatalf("default exposure time differs from 0.25 s:\n%s\n%s", withDefault, explicit)
	}
}

func TestMPE_Errors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing wavelength", []string{"mpe"}, "--wavelength is required"},
		{"bad target", []string{"mpe", "-w", "532", "--target", "retina"}, "unknown target"},
		{"bad class", []string{"mpe", "-w", "532", "--class", "5"}, "unknown class"},
		{"bad output", []string{"mpe", "-w", "532", "-o", "xml"}, "unknown output format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestC5(t *testing.T) {
	f := decode[model.PulseTrainFactor](t, mustExecute(t, "c5", "-w", "1064", "--pulse-width", "1e-8", "--rep-rate", "1000", "-t", "0.25", "-o", "json"))
	if f.Outcome != model.OutcomeOK || f.NumberOfPulses != 250 {
		t.Fatalf("C5 = %+v", f)
	}
}

func TestCritical(t *testing.T) {
	out := mustExecute(t, "critical", "-w", "1064", "--pulse-width", "1e-6", "--rep-rate", "1000", "-t", "10")
	if !strings.Contains(out, model.RuleThermalTrain) {
		t.Fatalf("output:\n%s", out)
	}
	res := decode[model.CriticalLimitResult](t, mustExecute(t, "critical", "-w", "1064", "--pulse-width", "1e-6", "--rep-rate", "1000", "-t", "10", "-o", "json"))
	if res.Critical.LimitingMechanism != model.RuleThermalTrain {
		t.Fatalf("critical rule = %q", res.Critical.LimitingMechanism)
	}
}

func TestNOHD_GreenPointer(t *testing.T) {
	args := []string{"nohd", "-w", "532", "-t", "0.25", "--power-mw", "5", "--diameter-mm", "2", "--divergence-mrad", "1"}
	h := decode[core.BeamHazard](t, mustExecute(t, append(args, "-o", "json")...))
	if h.NOHD.Governing != model.GoverningEye || math.Abs(h.NOHD.DistanceMeters-13.8) > 0.1 {
		t.Fatalf("NOHD = %+v", h.NOHD)
	}
	if out := mustExecute(t, args...); !strings.Contains(out, "eye governs") {
		t.Fatalf("text output:\n%s", out)
	}
}

func TestNOHD_CollimatedHazardIsInfinite(t *testing.T) {
	out := mustExecute(t, "nohd", "-w", "532", "-t", "0.25", "-p", "1", "--diameter-mm", "2", "-o", "json")
	if !strings.Contains(out, `"+Inf"`) {
		t.Fatalf("expected +Inf in JSON:\n%s", out)
	}
	h := decode[core.BeamHazard](t, out)
	if !math.IsInf(h.NOHD.DistanceMeters, 1) || h.NOHD.Eye.HazardClass != model.HazardUnbounded {
		t.Fatalf("NOHD = %+v", h.NOHD)
	}
}

func TestNOHD_PowerFlagsAreExclusive(t *testing.T) {
	_, _, err := execute(t, "nohd", "-w", "532", "-p", "1", "--power-mw", "5", "--diameter-mm", "2")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("err = %v", err)
	}
}

func TestEyewear(t *testing.T) {
	r := decode[core.EyewearRating](t, mustExecute(t, "eyewear", "-w", "532", "-t", "0.25", "-p", "1", "--diameter-mm", "2", "-o", "json"))
	if r.Outcome != model.OutcomeOK || r.OpticalDensity < 3 || r.OpticalDensity > 5 {
		t.Fatalf("rating = %+v", r)
	}
	if _, _, err := execute(t, "eyewear", "-w", "532", "-p", "1"); err == nil {
		t.Fatalf("expected error without a beam diameter")
	}
}

func TestClassify(t *testing.T) {
	cw := decode[model.ClassificationResult](t, mustExecute(t, "classify", "-w", "532", "-t", "10", "--power-mw", "0.9", "-o", "json"))
	if cw.Class != model.Class2 {
		t.Fatalf("0.9 mW at 532 nm: class %s", cw.Class)
	}
	pulsed := decode[model.ClassificationResult](t, mustExecute(t, "classify", "-w", "1064", "-t", "10", "--energy", "0.1", "--pulse-width", "1e-8", "--rep-rate", "10", "-o", "json"))
	if pulsed.Class != model.Class4 {
		t.Fatalf("100 mJ pulses: class %s", pulsed.Class)
	}
}

func TestSweep(t *testing.T) {
	resp := decode[types.SweepResponse](t, mustExecute(t, "sweep", "--from", "400", "--to", "1400", "--points", "11", "-t", "10", "-o", "json"))
	if len(resp.Points) != 11 || resp.Points[0].WavelengthNm != 400 || resp.Points[10].WavelengthNm != 1400 {
		t.Fatalf("points = %+v", resp.Points)
	}
	for _, p := range resp.Points {
		if !p.Limit.Applicable() {
			t.Fatalf("%g nm: %+v", p.WavelengthNm, p.Limit)
		}
	}
	if _, _, err := execute(t, "sweep", "--points", "0", "-t", "10"); err == nil {
		t.Fatalf("expected error for zero points")
	}
}

func TestCatalog(t *testing.T) {
	list := decode[types.ProductList](t, mustExecute(t, "catalog", "list", "--catalog", catalogPath, "-o", "json"))
	if len(list.Products) != 5 {
		t.Fatalf("products = %d, want 5", len(list.Products))
	}

	out := mustExecute(t, "catalog", "show", "gp-532-5", "--catalog", catalogPath)
	if !strings.Contains(out, "Green alignment pointer") {
		t.Fatalf("show output:\n%s", out)
	}

	as := decode[[]core.ProductAssessment](t, mustExecute(t, "catalog", "assess", "gp-532-5", "--catalog", catalogPath, "-o", "json"))
	if len(as) != 1 || as[0].Classification.Class != model.Class3R || as[0].ClassMismatch {
		t.Fatalf("assessment = %+v", as)
	}

	all := decode[[]core.ProductAssessment](t, mustExecute(t, "catalog", "assess", "--catalog", catalogPath, "-o", "json"))
	if len(all) != len(list.Products) {
		t.Fatalf("assessed %d of %d products", len(all), len(list.Products))
	}

	_, _, err := execute(t, "catalog", "show", "nope", "--catalog", catalogPath)
	if !errors.Is(err, kb.ErrProductNotFound) {
		t.Fatalf("show nope: err = %v", err)
	}
}

func TestOverflight(t *testing.T) {
	dir := t.TempDir()
	tle := filepath.Join(dir, "iss.tle")
	if err := os.WriteFile(tle, []byte("ISS (ZARYA)\n"+issLine1+"\n"+issLine2+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	args := []string{"overflight", "--tle-file", tle, "--elevation", "90", "--keep-out", "180",
		"--start", "2021-10-02T14:00:00Z", "--window", "10m", "--step", "1m"}

	rep := decode[core.OverflightReport](t, mustExecute(t, append(args, "-o", "json")...))
	if rep.Steps != 11 || len(rep.Conflicts) != rep.VisibleSteps {
		t.Fatalf("report = %+v", rep)
	}
	if out := mustExecute(t, args...); !strings.Contains(out, "steps") {
		t.Fatalf("text output:\n%s", out)
	}

	_, _, err := execute(t, "overflight", "--tle-line1", issLine1[:68]+"0", "--tle-line2", issLine2,
		"--start", "2021-10-02T14:00:00Z")
	if !errors.Is(err, core.ErrInvalidTLE) {
		t.Fatalf("bad checksum: err = %v", err)
	}
}

func TestOverflight_RejectsBadStep(t *testing.T) {
	base := []string{"overflight", "--tle-line1", issLine1, "--tle-line2", issLine2, "--start", "2021-10-02T14:00:00Z"}

	_, _, err := execute(t, append(base, "--window", "10m", "--step", "0s")...)
	if !errors.Is(err, model.ErrRangeViolation) {
		t.Fatalf("zero step: err = %v", err)
	}
	_, _, err = execute(t, append(base, "--window", "1000h", "--step", "1s")...)
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("oversized window: err = %v", err)
	}
}

func TestOverflight_HazardDistanceFromProduct(t *testing.T) {
	_, errOut, err := execute(t, "overflight", "--tle-line1", issLine1, "--tle-line2", issLine2,
		"--start", "2021-10-02T14:00:00Z", "--window", "1m", "--step", "1m",
		"--product", "gp-532-5", "--catalog", catalogPath, "--log-level", "info")
	if err != nil {
		t.Fatalf("overflight: %v", err)
	}
	if !strings.Contains(errOut, "hazard distance from product NOHD") {
		t.Fatalf("stderr:\n%s", errOut)
	}
}

func TestConfigFileAndEnv(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "laserhazard.yaml")
	if err := os.WriteFile(cfg, []byte("output: json\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out := mustExecute(t, "--config", cfg, "mpe", "-w", "532", "-t", "0.25")
	if !json.Valid([]byte(out)) {
		t.Fatalf("config output: json ignored:\n%s", out)
	}

	t.Setenv("LASERHAZARD_OUTPUT", "json")
	t.Setenv("LASERHAZARD_EXPOSURE_TIME", "0.25")
	l := decode[model.ExposureLimit](t, mustExecute(t, "mpe", "-w", "532"))
	if math.Abs(l.Quantity.Value-6.36) > 0.01 {
		t.Fatalf("env exposure time ignored: %+v", l)
	}

	if _, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "mpe", "-w", "532"); err == nil {
		t.Fatalf("expected error for a missing explicit config file")
	}
}

func TestHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, ".laserhazard.yaml"), []byte("output: json\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if out := mustExecute(t, "mpe", "-w", "532"); !json.Valid([]byte(out)) {
		t.Fatalf("home config ignored:\n%s", out)
	}
}

func TestTraceFlagExportsCommandSpan(t *testing.T) {
	_, errOut, err := execute(t, "mpe", "-w", "532", "--trace")
	if err != nil {
		t.Fatalf("mpe --trace: %v", err)
	}
	if !strings.Contains(errOut, "laserhazard mpe") {
		t.Fatalf("span missing from stderr:\n%s", errOut)
	}

	_, errOut, err = execute(t, "mpe", "--trace")
	if err == nil || !strings.Contains(errOut, "--wavelength is required") {
		t.Fatalf("failed command span: err=%v\n%s", err, errOut)
	}
}
