package installer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vxfw/vxfw/codec"
	"github.com/vxfw/vxfw/logging"
	"github.com/vxfw/vxfw/progress"
	"github.com/vxfw/vxfw/protocol"
)

// Format names one supported installer container.
type Format string

const (
	FormatMaajonsn Format = "maajonsn"
	FormatMaaV101  Format = "maav101"
	FormatMaaV102  Format = "maav102"
	FormatMaaV105  Format = "maav105"
	FormatMaaV106  Format = "maav106"
	FormatKBP      Format = "kbp_cykb"
)

// ParseFormat maps a CLI format argument to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatMaajonsn, FormatMaaV101, FormatMaaV102, FormatMaaV105, FormatMaaV106, FormatKBP:
		return Format(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("installer: unknown format %q", s)
}

// Firmware is one extracted, fully decoded firmware image and the file name
// it is saved under.
type Firmware struct {
	Name string
	Data []byte

	// Info holds the decoded per-section info block for formats that carry
	// one (maaV102/105/106); nil otherwise.
	Info *SectionInfo
}

// Result is everything one installer yields.
type Result struct {
	Company   string
	Product   string
	Version   string
	Desc      string
	Firmwares []Firmware
}

// Config holds the extractor configuration.
type Config struct {
	Logger   logging.Logger
	Progress progress.Callback
}

// Option is a functional option for configuring the Extractor.
type Option func(*Config)

// WithLogger sets a logger for extraction diagnostics, including the
// decoded info-section fields.
func WithLogger(l logging.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithProgress sets a callback invoked once per extracted section.
func WithProgress(cb progress.Callback) Option {
	return func(c *Config) { c.Progress = cb }
}

// Extractor decodes vendor installers offline.
type Extractor struct {
	cfg Config
}

// New returns an Extractor with the given options applied.
func New(opts ...Option) *Extractor {
	cfg := Config{Logger: logging.Nop(), Progress: progress.Nop}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Extractor{cfg: cfg}
}

// ExtractFile extracts every firmware image from the installer at path. If
// outDir is non-empty the decoded images are also written there, one file
// per firmware.
func (e *Extractor) ExtractFile(format Format, path, outDir string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("installer: read %s: %w", path, err)
	}

	res, err := e.Extract(format, data, strings.HasSuffix(path, ".zip"))
	if err != nil {
		return nil, err
	}

	if outDir != "" {
		if err := save(res, outDir, e.cfg.Logger); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Extract extracts every firmware image from an installer already in
// memory. zipWrapped selects the ZIP outer-wrapper unwrap step that
// ExtractFile infers from the file suffix.
func (e *Extractor) Extract(format Format, data []byte, zipWrapped bool) (*Result, error) {
	switch format {
	case FormatMaajonsn:
		return e.extractMaa(data, false, parseMaajonsn, maajonsnTrailerSize, familyACodec, nameByLayoutVersion)
	case FormatMaaV101:
		return e.extractMaa(data, zipWrapped, parseMaaV101, maav101TrailerSize, familyACodec, nameByLayoutVersion)
	case FormatMaaV102:
		return e.extractMaa(data, zipWrapped, parseMaaV102, maav102TrailerSize, familyBCodec, nameByTrailerVersion)
	case FormatMaaV105:
		return e.extractMaa(data, zipWrapped, parseMaaV105, maav105TrailerSize, familyBCodec, nameBySection)
	case FormatMaaV106:
		return e.extractMaa(data, zipWrapped, parseMaaV106, maav106TrailerSize, familyBCodec, nameBySection)
	case FormatKBP:
		return e.extractKBP(data)
	}
	return nil, fmt.Errorf("installer: unknown format %q", format)
}

// fwCodec pairs the decode/encode directions of one family's firmware
// codec, so extraction can run the mandatory encode(decode(x)) self-test.
type fwCodec struct {
	decode func([]byte) ([]byte, error)
	encode func([]byte) ([]byte, error)
}

var (
	familyACodec = fwCodec{decode: codec.DecodeFirmwareA, encode: codec.EncodeFirmwareA}
	familyBCodec = fwCodec{decode: codec.DecodeFirmwareB, encode: codec.EncodeFirmwareB}
)

// nameFn builds the output file name for one section.
type nameFn func(t trailer, s section) string

func nameByLayoutVersion(t trailer, s section) string {
	return outputName(t.Product, s.Layout, s.LayoutVersion)
}

func nameByTrailerVersion(t trailer, s section) string {
	return outputName(t.Product, s.Layout, t.Version)
}

func nameBySection(t trailer, s section) string {
	return outputName(t.Product, t.Version, s.Desc, s.Layout, s.SectionVersion)
}

// decodeTrailer decodes and parses the trailing size bytes of exe.
func decodeTrailer(exe []byte, size int, parse func([]byte) (trailer, error)) (trailer, error) {
	if len(exe) < size {
		return trailer{}, fmt.Errorf("installer: file shorter (%d bytes) than its trailer (%d bytes)", len(exe), size)
	}
	strs := codec.DecodePackageData(exe[len(exe)-size:])
	return parse(strs)
}

// extractMaa is the shared maa-format pipeline: locate the updater exe
// (falling through wrapper candidates on signature mismatch), decode the
// trailer, then walk the firmware and info sections stacked immediately
// before it.
func (e *Extractor) extractMaa(data []byte, zipWrapped bool, parse func([]byte) (trailer, error), trailerSize int, fc fwCodec, name nameFn) (*Result, error) {
	exe := data
	if zipWrapped {
		var err error
		exe, err = unwrapZip(data)
		if err != nil {
			return nil, err
		}
	}

	t, err := decodeTrailer(exe, trailerSize, parse)
	if err != nil {
		var sigErr *protocol.SignatureMismatchError
		if !errors.As(err, &sigErr) {
			return nil, err
		}
		// Not a bare updater; try the self-extracting installer wrapper.
		exes, rarErr := selfExtractingEXEs(exe)
		if rarErr != nil {
			return nil, fmt.Errorf("installer: %w (and no wrapped updater: %v)", err, rarErr)
		}
		found := false
		for _, candidate := range exes {
			if ct, cerr := decodeTrailer(candidate, trailerSize, parse); cerr == nil {
				exe, t, found = candidate, ct, true
				break
			}
		}
		if !found {
			return nil, err
		}
	}

	e.cfg.Logger.Info("decoded installer trailer",
		"company", t.Company, "product", t.Product, "version", t.Version)

	res := &Result{Company: t.Company, Product: t.Product, Version: t.Version, Desc: t.Desc}

	total := trailerSize
	for _, s := range t.Sections {
		total += s.FirmwareSize + s.InfoSize
	}
	if total > len(exe) {
		return nil, fmt.Errorf("installer: sections (%d bytes) exceed file size (%d bytes)", total, len(exe))
	}

	pos := len(exe) - total
	for i, s := range t.Sections {
		fsec := codec.DecodePackageData(exe[pos : pos+s.FirmwareSize])
		pos += s.FirmwareSize

		dec, err := fc.decode(fsec)
		if err != nil {
			return nil, fmt.Errorf("installer: decode section %d: %w", i, err)
		}
		check, err := fc.encode(dec)
		if err != nil {
			return nil, fmt.Errorf("installer: re-encode section %d: %w", i, err)
		}
		if !bytes.Equal(check, fsec) {
			return nil, &protocol.SelfTestFailureError{Section: s.Layout}
		}

		fw := Firmware{Name: name(t, s), Data: dec}

		if s.InfoSize > 0 {
			isec := codec.DecodePackageData(exe[pos : pos+s.InfoSize])
			pos += s.InfoSize
			info := parseInfoSection(isec)
			fw.Info = &info
			e.cfg.Logger.Debug("section info",
				"layout", s.Layout, "version", info.Version,
				"vid", fmt.Sprintf("%#04x", info.VID), "pid", fmt.Sprintf("%#04x", info.PID))
		}

		e.cfg.Logger.Info("extracted firmware",
			"layout", s.Layout, "size", len(dec), "file", fw.Name)
		e.cfg.Progress(progress.Progress{
			Phase:       progress.PhaseExtracting,
			CurrentItem: i + 1,
			TotalItems:  len(t.Sections),
			Percentage:  100 * float64(i+1) / float64(len(t.Sections)),
		})

		res.Firmwares = append(res.Firmwares, fw)
	}

	return res, nil
}

// save writes every extracted firmware into dir, creating it if needed.
func save(res *Result, dir string, log logging.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("installer: create output dir: %w", err)
	}
	for _, fw := range res.Firmwares {
		path := filepath.Join(dir, fw.Name)
		if err := os.WriteFile(path, fw.Data, 0o644); err != nil {
			return fmt.Errorf("installer: write %s: %w", path, err)
		}
		log.Info("saved firmware", "file", path)
	}
	return nil
}
