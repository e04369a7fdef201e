package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/spells"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

type StorageConfig struct {
	/* World definition */
	Zones AssetConfig[*world.Zone] `json:"zones"`
	Doors AssetConfig[*world.Door] `json:"doors"`

	/* Templates */
	Creatures AssetConfig[*combat.CreatureSpec] `json:"creatures"`
	Spells    AssetConfig[*spells.Spell]        `json:"spells"`
	Weapons   AssetConfig[*game.Weapon]         `json:"weapons"`
	Items     AssetConfig[*game.Item]           `json:"items"`

	/* Player state */
	Characters AssetConfig[*game.Character] `json:"characters"`
}

// stores holds the opened asset stores BuildWorkers wires into the rest
// of the system.
type stores struct {
	zones     *storage.FileStore[*world.Zone]
	doors     *storage.FileStore[*world.Door]
	creatures *storage.FileStore[*combat.CreatureSpec]
	spells    *storage.FileStore[*spells.Spell]
	weapons   *storage.FileStore[*game.Weapon]
	items     *storage.FileStore[*game.Item]
	chars     *storage.FileStore[*game.Character]
}

func (c *StorageConfig) buildStores() (*stores, error) {
	zones, err := c.Zones.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating zone store: %w", err)
	}
	doors, err := c.Doors.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating door store: %w", err)
	}
	creatures, err := c.Creatures.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating creature store: %w", err)
	}
	spellStore, err := c.Spells.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating spell store: %w", err)
	}
	weapons, err := c.Weapons.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating weapon store: %w", err)
	}
	items, err := c.Items.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating item store: %w", err)
	}
	chars, err := c.Characters.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating character store: %w", err)
	}

	return &stores{
		zones:     zones,
		doors:     doors,
		creatures: creatures,
		spells:    spellStore,
		weapons:   weapons,
		items:     items,
		chars:     chars,
	}, nil
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Zones.Validate("zones"))
	el.Add(c.Doors.Validate("doors"))
	el.Add(c.Creatures.Validate("creatures"))
	el.Add(c.Spells.Validate("spells"))
	el.Add(c.Weapons.Validate("weapons"))
	el.Add(c.Items.Validate("items"))
	el.Add(c.Characters.Validate("characters"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
