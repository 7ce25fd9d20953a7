package nvm

import (
	"path/filepath"
	"testing"

	"maslow-go/pkg/merrors"
	"maslow-go/pkg/settings"
)

func TestFileBackendPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nvm.img")

	backend, err := OpenFileBackend(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := New(backend)
	if err := st.WriteSetting(settings.NumMachineWidth, 2750); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := OpenFileBackend(path)
	if err != nil {
		t.Fatalf("unexpected error reopening: %v", err)
	}
	st2 := New(reopened)
	v, err := st2.ReadSetting(settings.NumMachineWidth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 2750 {
		t.Fatalf("expected 2750 after reopen, got %v", v)
	}
}

// A freshly zeroed image has never had its checksum bytes written, so
// reading an untouched setting must fail rather than silently return 0
// (the same checksum protection TestReadSettingChecksumMismatch
// exercises for a corrupted write).
func TestOpenFileBackendMissingFileStartsUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.img")
	backend, err := OpenFileBackend(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := New(backend)
	if _, err := st.ReadSetting(settings.NumMachineWidth); !merrors.Is(err, merrors.ErrPersistChecksum) {
		t.Fatalf("expected a checksum error on an untouched setting, got %v", err)
	}
}

func TestWriteReadSettingRoundTrip(t *testing.T) {
	st := New(NewMemoryBackend())

	if err := st.WriteSetting(settings.NumMachineWidth, 3200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := st.ReadSetting(settings.NumMachineWidth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3200 {
		t.Fatalf("expected 3200, got %v", v)
	}
}

func TestReadSettingChecksumMismatch(t *testing.T) {
	backend := NewMemoryBackend()
	st := New(backend)

	if err := st.WriteSetting(settings.NumSledWeight, 45); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Corrupt one byte of the stored value without touching the checksum.
	offset := settingOffset(settings.NumSledWeight)
	if err := backend.WriteAt(offset, []byte{0xff}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := st.ReadSetting(settings.NumSledWeight)
	if !merrors.Is(err, merrors.ErrPersistChecksum) {
		t.Fatalf("expected checksum error, got %v", err)
	}
}

func TestStartupLineRoundTrip(t *testing.T) {
	st := New(NewMemoryBackend())

	if err := st.WriteStartupLine(1, "G21G90"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line, err := st.ReadStartupLine(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "G21G90" {
		t.Fatalf("expected G21G90, got %q", line)
	}
}

func TestStartupLineTooLongRejected(t *testing.T) {
	st := New(NewMemoryBackend())
	long := make([]byte, EEPROMLineSize)
	for i := range long {
		long[i] = 'G'
	}
	if err := st.WriteStartupLine(0, string(long)); err == nil {
		t.Fatalf("expected error for over-length startup line")
	}
}

func TestClearStartupLines(t *testing.T) {
	st := New(NewMemoryBackend())

	for i := 0; i < NStartupLine; i++ {
		if err := st.WriteStartupLine(i, "G0X0"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := st.ClearStartupLines(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < NStartupLine; i++ {
		line, err := st.ReadStartupLine(i)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if line != "" {
			t.Fatalf("expected slot %d cleared, got %q", i, line)
		}
	}
}

func TestRestoreSettingDefaults(t *testing.T) {
	st := New(NewMemoryBackend())

	if err := st.WriteSetting(settings.NumMachineWidth, 9999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := st.RestoreSettingDefaults(settings.Default()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := st.ReadSetting(settings.NumMachineWidth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != settings.Default().MachineWidth {
		t.Fatalf("expected default machine width, got %v", v)
	}
}

func TestBuildInfoRecordRoundTrip(t *testing.T) {
	st := New(NewMemoryBackend())

	want := BuildInfo{Version: "1.2.3", Hash: "abc123", BuildDate: "2026-08-06"}
	if err := st.WriteBuildInfoRecord(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := st.ReadBuildInfoRecord()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestBuildInfoPlainTextFallback(t *testing.T) {
	st := New(NewMemoryBackend())

	if err := st.WriteBuildInfo("1.0.0:deadbeef:2026-01-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := st.ReadBuildInfoRecord()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := BuildInfo{Version: "1.0.0", Hash: "deadbeef", BuildDate: "2026-01-01"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
