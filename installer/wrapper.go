package installer

import (
	"archive/zip"
	"bytes"
	"debug/pe"
	"fmt"
	"io"
	"strings"

	"github.com/nwaples/rardecode"
)

// unwrapZip returns the first .exe member of a ZIP archive.
func unwrapZip(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("installer: open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".exe") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("installer: open zip member %s: %w", f.Name, err)
		}
		defer rc.Close()
		buf, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("installer: read zip member %s: %w", f.Name, err)
		}
		return buf, nil
	}
	return nil, fmt.Errorf("installer: zip archive contains no .exe member")
}

// selfExtractingEXEs unpacks a Cooler Master self-extracting installer: the
// RAR archive is appended directly after the PE stub's .rsrc section, so
// its start is PointerToRawData+SizeOfRawData of that section. Returns
// every .exe member, in archive order.
func selfExtractingEXEs(data []byte) ([][]byte, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("installer: parse PE stub: %w", err)
	}
	defer f.Close()

	var rarStart int64 = -1
	for _, sec := range f.Sections {
		if sec.Name == ".rsrc" {
			rarStart = int64(sec.Offset) + int64(sec.Size)
			break
		}
	}
	if rarStart < 0 {
		return nil, fmt.Errorf("installer: PE stub has no .rsrc section")
	}
	if rarStart >= int64(len(data)) {
		return nil, fmt.Errorf("installer: no archive data after .rsrc section")
	}

	rr, err := rardecode.NewReader(bytes.NewReader(data[rarStart:]), "")
	if err != nil {
		return nil, fmt.Errorf("installer: open embedded rar: %w", err)
	}

	var exes [][]byte
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("installer: read embedded rar: %w", err)
		}
		if hdr.IsDir || !strings.HasSuffix(hdr.Name, ".exe") {
			continue
		}
		buf, err := io.ReadAll(rr)
		if err != nil {
			return nil, fmt.Errorf("installer: read rar member %s: %w", hdr.Name, err)
		}
		exes = append(exes, buf)
	}
	return exes, nil
}
