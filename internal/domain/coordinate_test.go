package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    Coordinate
		wantStr string
		wantErr bool
	}{
		{name: "paris", in: "2.35,48.86", want: Coordinate{Lon: 2.35, Lat: 48.86}, wantStr: "2.35,48.86"},
		{name: "spaces", in: " -73.98 , 40.75 ", want: Coordinate{Lon: -73.98, Lat: 40.75}, wantStr: "-73.98,40.75"},
		{name: "integers", in: "10,20", want: Coordinate{Lon: 10, Lat: 20}, wantStr: "10,20"},
		{name: "bounds", in: "180,-90", want: Coordinate{Lon: 180, Lat: -90}, wantStr: "180,-90"},
		{name: "empty", in: "", wantErr: true},
		{name: "single value", in: "2.35", wantErr: true},
		{name: "three values", in: "1,2,3", wantErr: true},
		{name: "not a number", in: "east,48.86", wantErr: true},
		{name: "lon out of range", in: "181,0", wantErr: true},
		{name: "lat out of range", in: "0,90.5", wantErr: true},
		{name: "nan longitude", in: "NaN,0", wantErr: true},
		{name: "nan latitude", in: "0,nan", wantErr: true},
		{name: "both nan", in: "NaN,NaN", wantErr: true},
		{name: "infinite", in: "+Inf,0", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCoordinate(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCoordinate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}
