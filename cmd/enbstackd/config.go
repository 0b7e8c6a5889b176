package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/enbstack/cell"
	"github.com/sarchlab/enbstack/station"
)

// CellConfig is one carrier's JSON-configured parameters plus its PUCCH
// resource grid layout.
type CellConfig struct {
	CarrierIndex    uint8   `json:"carrier_index"`
	DLEarfcn        uint32  `json:"dl_earfcn"`
	ULEarfcn        uint32  `json:"ul_earfcn"`
	NumPRB          uint16  `json:"num_prb"`
	NumAntennaPorts uint8   `json:"num_antenna_ports"`
	DeltaShift      uint8   `json:"delta_shift"`
	NcsAN           uint8   `json:"ncs_an"`
	SRPRBs          int     `json:"sr_prbs"`
	SRSFs           int     `json:"sr_subframes"`
	SRSFMapping     []int   `json:"sr_subframe_mapping"`
	CQIPRBs         int     `json:"cqi_prbs"`
	CQISFs          int     `json:"cqi_subframes"`
	CQISFMapping    []int   `json:"cqi_subframe_mapping"`
}

// Config is the station's process configuration (spec.md §6: deployment
// configures the cell parameter set at startup, after which it is frozen).
type Config struct {
	AdminPort int          `json:"admin_port"`
	Cells     []CellConfig `json:"cells"`
}

// LoadConfig reads path as JSON, then lets environment variables loaded via
// joho/godotenv override individual fields. The teacher's go.mod carries
// godotenv as a direct dependency with no importing file; this is the home
// we give it, following the same "defaults from a file, override from the
// environment" shape every teacher deployment script assumes implicitly.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load() // best effort: a missing .env is not an error

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if v := os.Getenv("ENBSTACKD_ADMIN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("ENBSTACKD_ADMIN_PORT: %w", err)
		}
		cfg.AdminPort = port
	}

	return cfg, nil
}

// BuildCellTable freezes a cell.Table and a per-carrier PUCCH layout map
// from the JSON config.
func (c Config) BuildCellTable() (*cell.Table, map[uint8]station.PUCCHLayout, error) {
	table := cell.NewTable()
	layouts := make(map[uint8]station.PUCCHLayout, len(c.Cells))

	for _, cc := range c.Cells {
		p := cell.Params{
			CarrierIndex:    cc.CarrierIndex,
			DLEarfcn:        cc.DLEarfcn,
			ULEarfcn:        cc.ULEarfcn,
			NumPRB:          cc.NumPRB,
			NumAntennaPorts: cc.NumAntennaPorts,
			PUCCH: cell.PUCCHCommonConfig{
				DeltaShift: cc.DeltaShift,
				NcsAN:      cc.NcsAN,
			},
		}
		if err := table.Add(p); err != nil {
			return nil, nil, err
		}
		layouts[cc.CarrierIndex] = station.PUCCHLayout{
			SRPRBs:       cc.SRPRBs,
			SRSFs:        cc.SRSFs,
			SRSFMapping:  cc.SRSFMapping,
			CQIPRBs:      cc.CQIPRBs,
			CQISFs:       cc.CQISFs,
			CQISFMapping: cc.CQISFMapping,
		}
	}
	table.Freeze()
	return table, layouts, nil
}
