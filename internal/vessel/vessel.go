package vessel

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Profile describes a registered vessel. Zero-valued fields are treated
// as unknown and omitted from the expanded value map.
type Profile struct {
	Name            string  `json:"name" yaml:"name"`
	IMO             string  `json:"imo" yaml:"imo"`
	MMSI            string  `json:"mmsi,omitempty" yaml:"mmsi,omitempty"`
	CallSign        string  `json:"call_sign,omitempty" yaml:"call_sign,omitempty"`
	Type            string  `json:"type,omitempty" yaml:"type,omitempty"`
	Flag            string  `json:"flag,omitempty" yaml:"flag,omitempty"`
	Built           int     `json:"built,omitempty" yaml:"built,omitempty"`
	Deadweight      int     `json:"deadweight,omitempty" yaml:"deadweight,omitempty"`
	GrossTonnage    int     `json:"gross_tonnage,omitempty" yaml:"gross_tonnage,omitempty"`
	NetTonnage      int     `json:"net_tonnage,omitempty" yaml:"net_tonnage,omitempty"`
	LengthMeters    float64 `json:"length_m,omitempty" yaml:"length_m,omitempty"`
	BeamMeters      float64 `json:"beam_m,omitempty" yaml:"beam_m,omitempty"`
	DraughtMeters   float64 `json:"draught_m,omitempty" yaml:"draught_m,omitempty"`
	Owner           string  `json:"owner,omitempty" yaml:"owner,omitempty"`
	Operator        string  `json:"operator,omitempty" yaml:"operator,omitempty"`
	CargoType       string  `json:"cargo_type,omitempty" yaml:"cargo_type,omitempty"`
	DeparturePort   string  `json:"departure_port,omitempty" yaml:"departure_port,omitempty"`
	DestinationPort string  `json:"destination_port,omitempty" yaml:"destination_port,omitempty"`
}

// Values expands the profile into normalized placeholder names, covering
// the aliases trade documents use for the same field. Seeding a resolver
// session with this map makes every occurrence of the vessel's fields
// resolve to the registered data.
func (p Profile) Values() map[string]string {
	vals := make(map[string]string)
	put := func(value string, names ...string) {
		if value == "" {
			return
		}
		for _, n := range names {
			vals[n] = value
		}
	}

	put(p.Name, "vessel_name", "ship_name")
	put(p.IMO, "imo", "imo_number")
	put(p.MMSI, "mmsi")
	put(p.CallSign, "callsign", "call_sign")
	put(p.Type, "vessel_type", "ship_type")
	put(p.Flag, "flag", "flag_state")
	put(p.Owner, "owner", "owner_name", "company")
	put(p.Operator, "operator", "operator_name")
	put(p.CargoType, "cargo_type", "commodity")
	put(p.DeparturePort, "departure_port", "port_of_loading")
	put(p.DestinationPort, "destination_port", "port_of_discharge")

	if p.Built > 0 {
		year := strconv.Itoa(p.Built)
		put(year, "built", "year_built")
	}
	if p.Deadweight > 0 {
		dwt := strconv.Itoa(p.Deadweight)
		put(dwt, "deadweight", "tonnage", "deadweight_tonnage")
	}
	if p.GrossTonnage > 0 {
		put(strconv.Itoa(p.GrossTonnage), "gross_tonnage")
	}
	if p.NetTonnage > 0 {
		put(strconv.Itoa(p.NetTonnage), "net_tonnage")
	}
	if p.LengthMeters > 0 {
		put(formatMeters(p.LengthMeters), "length", "length_overall")
	}
	if p.BeamMeters > 0 {
		put(formatMeters(p.BeamMeters), "beam", "width")
	}
	if p.DraughtMeters > 0 {
		put(formatMeters(p.DraughtMeters), "draught", "draft")
	}
	return vals
}

func formatMeters(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NormalizeIMO reduces an IMO number to its digits, accepting forms like
// "IMO 9456782", "imo9456782" and "9456782".
func NormalizeIMO(imo string) string {
	s := strings.TrimSpace(strings.ToUpper(imo))
	s = strings.TrimPrefix(s, "IMO")
	return strings.TrimSpace(s)
}

// Registry resolves vessel profiles by IMO number. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byIMO map[string]Profile
}

// NewRegistry creates a registry pre-populated with the given profiles.
// Profiles without an IMO number are skipped.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{byIMO: make(map[string]Profile)}
	for _, p := range profiles {
		_ = r.Add(p)
	}
	return r
}

// Add registers a profile under its IMO number.
func (r *Registry) Add(p Profile) error {
	key := NormalizeIMO(p.IMO)
	if key == "" {
		return fmt.Errorf("vessel %q has no IMO number", p.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byIMO[key] = p
	return nil
}

// Lookup finds a profile by IMO number in any accepted form.
func (r *Registry) Lookup(imo string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byIMO[NormalizeIMO(imo)]
	return p, ok
}

// Len reports the number of registered vessels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIMO)
}

type registryFile struct {
	Vessels []Profile `yaml:"vessels"`
}

// LoadFile reads a YAML vessel registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vessel registry: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse vessel registry: %w", err)
	}

	r := NewRegistry()
	for _, p := range file.Vessels {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}
