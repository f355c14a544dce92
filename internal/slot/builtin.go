package slot

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	NameThree = "three"
	NameSix   = "six"
)

func threeWindowSlots() []TimeSlot {
	return []TimeSlot{
		{ID: 1, Label: "Vormittag (08:00 - 12:00)", StartHour: 8, Duration: 4},
		{ID: 2, Label: "Nachmittag (12:00 - 18:00)", StartHour: 12, Duration: 6},
		{ID: 3, Label: "Nacht (18:00 - 08:00)", StartHour: 18, Duration: 14},
	}
}

func sixWindowSlots() []TimeSlot {
	slots := make([]TimeSlot, 0, 6)
	for i := 0; i < 6; i++ {
		start := i * 4
		slots = append(slots, TimeSlot{
			ID:        i + 1,
			Label:     fmt.Sprintf("%02d:00 - %02d:00", start, (start+4)%24),
			StartHour: start,
			Duration:  4,
		})
	}
	return slots
}

// ThreeWindow is the morning/afternoon/night catalog.
func ThreeWindow(loc *time.Location) *Catalog {
	c, err := NewCatalog(loc, threeWindowSlots()...)
	if err != nil {
		panic(err)
	}
	return c
}

// SixWindow splits the day into six 4h windows starting at midnight.
func SixWindow(loc *time.Location) *Catalog {
	c, err := NewCatalog(loc, sixWindowSlots()...)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a catalog from a yaml, json or toml file of the form
//
//	slots:
//	  - {id: 1, label: Vormittag, start_hour: 8, duration: 4}
func LoadFile(path string, loc *time.Location) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read slot catalog %s: %w", path, err)
	}

	var file struct {
		Slots []TimeSlot `mapstructure:"slots"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode slot catalog %s: %w", path, err)
	}

	return NewCatalog(loc, file.Slots...)
}

// Named returns a built-in catalog. The empty name selects ThreeWindow.
func Named(name string, loc *time.Location) (*Catalog, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameThree:
		return ThreeWindow(loc), true
	case NameSix:
		return SixWindow(loc), true
	default:
		return nil, false
	}
}

// Resolve accepts a built-in catalog name or a file path.
func Resolve(nameOrPath string, loc *time.Location) (*Catalog, error) {
	if c, ok := Named(nameOrPath, loc); ok {
		return c, nil
	}
	return LoadFile(nameOrPath, loc)
}
