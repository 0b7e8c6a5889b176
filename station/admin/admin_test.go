package admin_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/sarchlab/enbstack/cell"
	"github.com/sarchlab/enbstack/rrc"
	"github.com/sarchlab/enbstack/station"
	"github.com/sarchlab/enbstack/station/admin"
	"github.com/stretchr/testify/require"
)

type fakeSignaling struct{}

func (fakeSignaling) InitialUE(rnti uint16, nasPDU []byte) error    { return nil }
func (fakeSignaling) WritePDU(rnti uint16, nasPDU []byte) error     { return nil }
func (fakeSignaling) UserRelease(rnti uint16, cause string) error   { return nil }
func (fakeSignaling) HandoverRequired(rnti uint16, correlationID string, container []byte) error {
	return nil
}

func testStation(t *testing.T) *station.Station {
	t.Helper()

	cells := cell.NewTable()
	require.NoError(t, cells.Add(cell.Params{
		CarrierIndex:    0,
		NumPRB:          50,
		CP:              cell.CyclicPrefixNormal,
		NumAntennaPorts: 1,
		PUCCH:           cell.PUCCHCommonConfig{DeltaShift: 2, NcsAN: 1},
	}))
	cells.Freeze()

	layouts := map[uint8]station.PUCCHLayout{
		0: {SRPRBs: 1, SRSFs: 1, SRSFMapping: []int{0}, CQIPRBs: 1, CQISFs: 1, CQISFMapping: []int{0}},
	}
	s, err := station.NewStation(cells, layouts, fakeSignaling{})
	require.NoError(t, err)
	return s
}

func TestListUsersReturnsRegisteredRNTIs(t *testing.T) {
	t.Parallel()

	s := testStation(t)
	_, err := s.AddUser(0x46, rrc.DefaultConfig())
	require.NoError(t, err)

	a := admin.New(s, 0)
	addr, err := a.StartServer()
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/api/users")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []uint16
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, []uint16{0x46}, got)
}

func TestUserDetailNotFoundReturns404(t *testing.T) {
	t.Parallel()

	s := testStation(t)
	a := admin.New(s, 0)
	addr, err := a.StartServer()
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/api/user/99")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetCellGainUpdatesStation(t *testing.T) {
	t.Parallel()

	s := testStation(t)
	a := admin.New(s, 0)
	addr, err := a.StartServer()
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/api/cell/0/gain", strings.NewReader(`{"gain_db":-2.5}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.Equal(t, -2.5, s.CellGain(0))
}

func TestSetCellGainUnknownCarrierReturns404(t *testing.T) {
	t.Parallel()

	s := testStation(t)
	a := admin.New(s, 0)
	addr, err := a.StartServer()
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/api/cell/9/gain", strings.NewReader(`{"gain_db":0}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
