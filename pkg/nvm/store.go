// Package nvm is the EEPROM/persistent-settings collaborator (spec §6
// "Persisted state layout"): per-setting word storage, the startup-line
// slots, and the build-info block, each written value-then-checksum so a
// torn write is detectable on the next read.
//
// Grounded on the teacher's pkg/config autosave idiom (config.go/
// autosave.go's track-then-flush pattern: mutate an in-memory record,
// then push it to the backing store) retargeted from a JSON config file
// to a byte-addressed EEPROM image, with crc16.go's checksum reused
// verbatim as the block checksum.
package nvm

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"maslow-go/pkg/merrors"
	"maslow-go/pkg/settings"
)

// Layout constants (spec §3 "Startup lines").
const (
	NStartupLine   = 4
	EEPROMLineSize = 128

	settingRecordSize = 10 // 8-byte float64 value + 2-byte checksum
	settingsBase      = 0
	settingsAreaSize  = 256 * settingRecordSize

	buildInfoOffset  = settingsBase + settingsAreaSize
	buildInfoSize    = EEPROMLineSize + 2

	startupLinesOffset = buildInfoOffset + buildInfoSize
)

// Backend is the raw byte-addressed storage this core persists through.
// A real build wires this to on-chip EEPROM or a flash page; tests and
// the CLI use MemoryBackend.
type Backend interface {
	ReadAt(offset, length int) ([]byte, error)
	WriteAt(offset int, data []byte) error
}

// MemoryBackend is an in-memory Backend, the default for anything that
// doesn't have real EEPROM underneath it.
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryBackend allocates a zeroed image large enough for the full
// layout.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make([]byte, ImageSize)}
}

func (m *MemoryBackend) ReadAt(offset, length int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset < 0 || offset+length > len(m.data) {
		return nil, fmt.Errorf("nvm: read [%d,%d) out of range", offset, offset+length)
	}
	out := make([]byte, length)
	copy(out, m.data[offset:offset+length])
	return out, nil
}

func (m *MemoryBackend) WriteAt(offset int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset < 0 || offset+len(data) > len(m.data) {
		return fmt.Errorf("nvm: write [%d,%d) out of range", offset, offset+len(data))
	}
	copy(m.data[offset:], data)
	return nil
}

// ImageSize is the total byte length of one NVM image: the settings
// area, the build-info block, and the startup-line slots.
const ImageSize = startupLinesOffset + NStartupLine*(EEPROMLineSize+2)

// FileBackend is a Backend over a flat file: the whole image is read
// into memory on open, and every WriteAt flushes the full image back to
// disk atomically (temp file, then rename), grounded on the teacher's
// pkg/config.AutosaveConfig.SaveChanges track-then-flush idiom
// retargeted from an INI-format config file to a fixed-size binary
// image.
type FileBackend struct {
	mu   sync.Mutex
	path string
	data []byte
}

// OpenFileBackend loads path into memory, creating a zeroed image of
// ImageSize bytes if the file does not exist yet.
func OpenFileBackend(path string) (*FileBackend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("nvm: open %s: %w", path, err)
		}
		data = make([]byte, ImageSize)
	}
	if len(data) < ImageSize {
		padded := make([]byte, ImageSize)
		copy(padded, data)
		data = padded
	}
	return &FileBackend{path: path, data: data}, nil
}

func (f *FileBackend) ReadAt(offset, length int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset < 0 || offset+length > len(f.data) {
		return nil, fmt.Errorf("nvm: read [%d,%d) out of range", offset, offset+length)
	}
	out := make([]byte, length)
	copy(out, f.data[offset:offset+length])
	return out, nil
}

func (f *FileBackend) WriteAt(offset int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset < 0 || offset+len(data) > len(f.data) {
		return fmt.Errorf("nvm: write [%d,%d) out of range", offset, offset+len(data))
	}
	copy(f.data[offset:], data)
	return f.flush()
}

func (f *FileBackend) flush() error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".nvm-*.tmp")
	if err != nil {
		return fmt.Errorf("nvm: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(f.data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("nvm: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("nvm: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("nvm: rename temp file: %w", err)
	}
	return nil
}

// Store is the NVM collaborator the dispatcher and startup runner talk
// to. It owns no cached copy of settings — every read goes to Backend,
// matching the interrupt-context read safety spec §5 assumes of the
// settings collaborator.
type Store struct {
	backend Backend
}

// New wraps backend as a Store.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func settingOffset(n settings.Number) int {
	return settingsBase + int(n)*settingRecordSize
}

// ReadSetting loads setting n's persisted value, validating its
// checksum (spec §6 "Write ordering: setting value written, then
// checksum").
func (st *Store) ReadSetting(n settings.Number) (float64, error) {
	raw, err := st.backend.ReadAt(settingOffset(n), settingRecordSize)
	if err != nil {
		return 0, merrors.PersistReadError(fmt.Sprintf("setting $%d", n), err)
	}
	value, checksum := raw[:8], raw[8:10]
	want0, want1 := checksum16(value)
	if checksum[0] != want0 || checksum[1] != want1 {
		return 0, merrors.PersistChecksumError(fmt.Sprintf("setting $%d", n))
	}
	bits := binary.LittleEndian.Uint64(value)
	return math.Float64frombits(bits), nil
}

// WriteSetting persists v for setting n: the value is written first,
// then its checksum, so a read that lands between the two halves of a
// torn write is caught by ReadSetting rather than silently accepted.
func (st *Store) WriteSetting(n settings.Number, v float64) error {
	value := make([]byte, 8)
	binary.LittleEndian.PutUint64(value, math.Float64bits(v))
	if err := st.backend.WriteAt(settingOffset(n), value); err != nil {
		return merrors.Wrap(err, merrors.ErrPersistWrite, fmt.Sprintf("writing setting $%d", n))
	}
	c0, c1 := checksum16(value)
	if err := st.backend.WriteAt(settingOffset(n)+8, []byte{c0, c1}); err != nil {
		return merrors.Wrap(err, merrors.ErrPersistWrite, fmt.Sprintf("writing checksum for setting $%d", n))
	}
	return nil
}

// RestoreSettingDefaults persists every field of defaults over the
// current settings area ($RST=$, spec §4.6).
func (st *Store) RestoreSettingDefaults(defaults *settings.Settings) error {
	for _, n := range settings.AllNumbers() {
		v, ok := defaults.Get(n)
		if !ok {
			continue
		}
		if err := st.WriteSetting(n, v); err != nil {
			return err
		}
	}
	return nil
}

func startupLineOffset(slot int) int {
	return startupLinesOffset + slot*(EEPROMLineSize+2)
}

// ReadStartupLine loads the text stored in slot (0..NStartupLine). A
// slot written by an older plain-text build decodes through the
// null-terminated fallback below; either way a torn or never-written
// slot fails its checksum and returns an error rather than "".
func (st *Store) ReadStartupLine(slot int) (string, error) {
	raw, err := st.readRawBlock(startupLineOffset(slot), EEPROMLineSize)
	if err != nil {
		return "", err
	}
	if line, err := decodeStartupLine(raw); err == nil {
		return line, nil
	}
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n]), nil
}

// WriteStartupLine CBOR-encodes line and stores it in slot, value then
// checksum like every other NVM write.
func (st *Store) WriteStartupLine(slot int, line string) error {
	if len(line) >= EEPROMLineSize {
		return merrors.New(merrors.ErrLineTooLong, fmt.Sprintf("startup line %d exceeds %d bytes", slot, EEPROMLineSize))
	}
	data, err := encodeStartupLine(line)
	if err != nil {
		return merrors.Wrap(err, merrors.ErrPersistWrite, fmt.Sprintf("encoding startup line %d", slot))
	}
	return st.writeRawBlock(startupLineOffset(slot), EEPROMLineSize, data)
}

// ReadBuildInfo loads the persisted build-info string ($I, spec §4.6).
func (st *Store) ReadBuildInfo() (string, error) {
	return st.readBlock(buildInfoOffset, EEPROMLineSize)
}

// WriteBuildInfo stores info as the build-info block.
func (st *Store) WriteBuildInfo(info string) error {
	if len(info) >= EEPROMLineSize {
		return merrors.New(merrors.ErrLineTooLong, "build info exceeds block size")
	}
	return st.writeBlock(buildInfoOffset, EEPROMLineSize, info)
}

// ClearStartupLines blanks every startup-line slot ($RST=#, spec §4.6).
func (st *Store) ClearStartupLines() error {
	for slot := 0; slot < NStartupLine; slot++ {
		if err := st.WriteStartupLine(slot, ""); err != nil {
			return err
		}
	}
	return nil
}

// readRawBlock loads size bytes and verifies the trailing checksum,
// without the null-terminated-text truncation readBlock applies — used
// for binary payloads such as a CBOR-encoded BuildInfo.
func (st *Store) readRawBlock(offset, size int) ([]byte, error) {
	raw, err := st.backend.ReadAt(offset, size+2)
	if err != nil {
		return nil, merrors.PersistReadError(fmt.Sprintf("block at %d", offset), err)
	}
	body, checksum := raw[:size], raw[size:size+2]
	want0, want1 := checksum16(body)
	if checksum[0] != want0 || checksum[1] != want1 {
		return nil, merrors.PersistChecksumError(fmt.Sprintf("block at %d", offset))
	}
	return body, nil
}

// writeRawBlock stores data padded with trailing zeros to size bytes,
// value then checksum, without text semantics.
func (st *Store) writeRawBlock(offset, size int, data []byte) error {
	if len(data) > size {
		return merrors.New(merrors.ErrLineTooLong, fmt.Sprintf("block at %d exceeds %d bytes", offset, size))
	}
	body := make([]byte, size)
	copy(body, data)
	if err := st.backend.WriteAt(offset, body); err != nil {
		return merrors.Wrap(err, merrors.ErrPersistWrite, "writing block")
	}
	c0, c1 := checksum16(body)
	return st.backend.WriteAt(offset+size, []byte{c0, c1})
}

// readBlock loads a null-terminated text block and verifies its trailing
// checksum.
func (st *Store) readBlock(offset, size int) (string, error) {
	raw, err := st.backend.ReadAt(offset, size+2)
	if err != nil {
		return "", merrors.PersistReadError(fmt.Sprintf("block at %d", offset), err)
	}
	body, checksum := raw[:size], raw[size:size+2]
	want0, want1 := checksum16(body)
	if checksum[0] != want0 || checksum[1] != want1 {
		return "", merrors.PersistChecksumError(fmt.Sprintf("block at %d", offset))
	}
	n := 0
	for n < size && body[n] != 0 {
		n++
	}
	return string(body[:n]), nil
}

// writeBlock stores text null-padded to size, value first then
// checksum.
func (st *Store) writeBlock(offset, size int, text string) error {
	body := make([]byte, size)
	copy(body, text)
	if err := st.backend.WriteAt(offset, body); err != nil {
		return merrors.Wrap(err, merrors.ErrPersistWrite, "writing block")
	}
	c0, c1 := checksum16(body)
	if err := st.backend.WriteAt(offset+size, []byte{c0, c1}); err != nil {
		return merrors.Wrap(err, merrors.ErrPersistWrite, "writing block checksum")
	}
	return nil
}
