package sqlitehandle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenFlags_Validate(t *testing.T) {
	tests := []struct {
		name    string
		flags   OpenFlags
		wantErr bool
	}{
		{name: "read only", flags: OpenReadOnly},
		{name: "read write", flags: OpenReadWrite},
		{name: "read write create", flags: OpenReadWrite | OpenCreate},
		{name: "memory", flags: OpenReadWrite | OpenCreate | OpenMemory},
		{name: "shared cache no mutex", flags: OpenReadWrite | OpenSharedCache | OpenNoMutex},
		{name: "uri", flags: OpenReadOnly | OpenURI},
		{name: "empty", flags: 0, wantErr: true},
		{name: "read only and read write", flags: OpenReadOnly | OpenReadWrite, wantErr: true},
		{name: "create without read write", flags: OpenReadOnly | OpenCreate, wantErr: true},
		{name: "both mutex modes", flags: OpenReadWrite | OpenNoMutex | OpenFullMutex, wantErr: true},
		{name: "both cache modes", flags: OpenReadWrite | OpenSharedCache | OpenPrivateCache, wantErr: true},
		{name: "unknown bit", flags: OpenReadWrite | 0x00100000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.Validate()
			if tt.wantErr {
				var engineErr *EngineError
				assert.ErrorAs(t, err, &engineErr)
				assert.Contains(t, err.Error(), "invalid open flags")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenFlags_String(t *testing.T) {
	assert.Equal(t, "0", OpenFlags(0).String())
	assert.Equal(t, "READONLY", OpenReadOnly.String())
	assert.Equal(t, "READWRITE|CREATE|SHAREDCACHE", (OpenReadWrite | OpenCreate | OpenSharedCache).String())
	assert.Equal(t, "READWRITE|0x100000", (OpenReadWrite | 0x00100000).String())
}

func TestOpenFlags_Mode(t *testing.T) {
	assert.Equal(t, ModeReadOnly, OpenReadOnly.Mode())
	assert.Equal(t, ModeReadWrite, OpenReadWrite.Mode())
	assert.Equal(t, ModeReadWriteCreate, (OpenReadWrite | OpenCreate).Mode())
	assert.Equal(t, ModeMemory, (OpenReadWrite | OpenCreate | OpenMemory).Mode())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    OpenFlags
		wantErr bool
	}{
		{name: "ro", value: "ro", want: OpenReadOnly},
		{name: "rw", value: "rw", want: OpenReadWrite},
		{name: "rwc", value: "rwc", want: OpenReadWrite | OpenCreate},
		{name: "memory", value: "memory", want: OpenReadWrite | OpenCreate | OpenMemory},
		{name: "case and spaces", value: " RWC ", want: OpenReadWrite | OpenCreate},
		{name: "empty", value: "", wantErr: true},
		{name: "unknown", value: "rwx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "valid values are")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}
