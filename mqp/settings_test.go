package mqp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mqpub/mqpub/test"
)

func Test_validateSettings(t *testing.T) {
	type args struct {
		s *Settings
	}
	testcases := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "zero value defaults to the stop marker mode",
			args: args{
				s: &Settings{},
			},
			wantErr: false,
		},
		{
			name: "stop after queued is valid",
			args: args{
				s: &Settings{StopMode: StopAfterQueued},
			},
			wantErr: false,
		},
		{
			name: "stop when drained is valid",
			args: args{
				s: &Settings{StopMode: StopWhenDrained, DisconnectOnStop: true},
			},
			wantErr: false,
		},
		{
			name: "unknown stop mode is rejected",
			args: args{
				s: &Settings{StopMode: StopMode(42)},
			},
			wantErr: true,
		},
		{
			name: "negative stop mode is rejected",
			args: args{
				s: &Settings{StopMode: StopMode(-1)},
			},
			wantErr: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateSettings(tc.args.s)
			test.AssertError(t, err, tc.wantErr)
		})
	}
}

func TestNewPanicsOnInvalidSettings(t *testing.T) {
	assert.Panics(t, func() {
		New(Settings{StopMode: StopMode(42)}, &test.MockedClient{})
	})
}
