package nvm

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// BuildInfo is the structured record stored at the build-info block
// ($I, spec §4.6/§6). The wire line format ($I alone prints it, $I=...
// stores a new one) only ever carries a single string, but this core
// keeps the parsed fields available to the reporting collaborator
// without re-parsing the line on every read.
//
// Grounded on the CBOR block-decode pattern used for structured NVM
// records elsewhere in the retrieved pack (the fusain package's
// ParseCBORMessage), applied here to a small fixed record instead of a
// streamed message.
type BuildInfo struct {
	Version   string `cbor:"version"`
	Hash      string `cbor:"hash"`
	BuildDate string `cbor:"build_date"`
}

// String renders BuildInfo back into the single line $I reports, in the
// same "version:hash:date" layout it was parsed from.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s:%s:%s", b.Version, b.Hash, b.BuildDate)
}

// ParseBuildInfoLine parses the line stored by $I=<info>. The Maslow
// convention is colon-separated version:hash:build_date; any field may
// be empty.
func ParseBuildInfoLine(line string) BuildInfo {
	var b BuildInfo
	fields := splitN3(line, ':')
	b.Version, b.Hash, b.BuildDate = fields[0], fields[1], fields[2]
	return b
}

func splitN3(s string, sep byte) [3]string {
	var out [3]string
	start, field := 0, 0
	for i := 0; i < len(s) && field < 2; i++ {
		if s[i] == sep {
			out[field] = s[start:i]
			field++
			start = i + 1
		}
	}
	out[field] = s[start:]
	return out
}

// encodeBuildInfo CBOR-encodes b for the NVM block it's stored in.
func encodeBuildInfo(b BuildInfo) ([]byte, error) {
	return cbor.Marshal(b)
}

// decodeBuildInfo reverses encodeBuildInfo. It decodes only the leading
// CBOR item, tolerating the trailing zero padding writeRawBlock always
// appends out to the fixed block size.
func decodeBuildInfo(data []byte) (BuildInfo, error) {
	var b BuildInfo
	err := cbor.NewDecoder(bytes.NewReader(data)).Decode(&b)
	return b, err
}

// startupLineRecord is the CBOR envelope a startup-line slot is stored
// in, mirroring BuildInfo's single-field record.
type startupLineRecord struct {
	Line string `cbor:"line"`
}

func encodeStartupLine(line string) ([]byte, error) {
	return cbor.Marshal(startupLineRecord{Line: line})
}

// decodeStartupLine reverses encodeStartupLine, decoding only the
// leading CBOR item so the trailing zero padding writeRawBlock appends
// out to the fixed slot size doesn't trip the decoder.
func decodeStartupLine(data []byte) (string, error) {
	var r startupLineRecord
	if err := cbor.NewDecoder(bytes.NewReader(data)).Decode(&r); err != nil {
		return "", err
	}
	return r.Line, nil
}

// ReadBuildInfoRecord loads and CBOR-decodes the build-info block. A
// block written by the plain WriteBuildInfo text path instead decodes
// through ParseBuildInfoLine, so $I keeps working whichever path last
// wrote the block.
func (st *Store) ReadBuildInfoRecord() (BuildInfo, error) {
	raw, err := st.readRawBlock(buildInfoOffset, EEPROMLineSize)
	if err != nil {
		return BuildInfo{}, err
	}
	if b, err := decodeBuildInfo(raw); err == nil {
		return b, nil
	}
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return ParseBuildInfoLine(string(raw[:n])), nil
}

// WriteBuildInfoRecord CBOR-encodes b and stores it as the build-info
// block, value then checksum like every other NVM write.
func (st *Store) WriteBuildInfoRecord(b BuildInfo) error {
	data, err := encodeBuildInfo(b)
	if err != nil {
		return err
	}
	return st.writeRawBlock(buildInfoOffset, EEPROMLineSize, data)
}
