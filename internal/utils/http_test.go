package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestStationIDParam(t *testing.T) {
	testCases := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "station id", path: "A41", want: "A41"},
		{name: "dotted id kept verbatim", path: "A41.json", want: "A41.json"},
		{name: "surrounding spaces trimmed", path: "%20F20%20", want: "F20"},
		{name: "blank", path: "%20", wantErr: true},
		{name: "invalid characters", path: "F20%3Bdrop", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()

			var got string
			var err error
			router.Handler(http.MethodGet, "/api/v1/stations/:id", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, err = StationIDParam(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/stations/"+tc.path, nil)
			router.ServeHTTP(httptest.NewRecorder(), req)

			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
