package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const createPokemonTable = `
CREATE TABLE IF NOT EXISTS pokemon (
	url            TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	pokedex_num    TEXT NOT NULL,
	elem_1         TEXT NOT NULL,
	elem_2         TEXT,
	species        TEXT,
	height_meters  DOUBLE PRECISION,
	weight_kg      DOUBLE PRECISION,
	male           DOUBLE PRECISION,
	female         DOUBLE PRECISION,
	is_genderless  BOOLEAN NOT NULL DEFAULT FALSE,
	hp             INTEGER,
	attack         INTEGER,
	defense        INTEGER,
	sp_atk         INTEGER,
	sp_def         INTEGER,
	speed          INTEGER,
	total          INTEGER,
	run_id         TEXT NOT NULL,
	updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_pokemon_pokedex_num ON pokemon(pokedex_num);
`

const upsertPokemon = `
INSERT INTO pokemon (
	url, name, pokedex_num, elem_1, elem_2, species, height_meters, weight_kg,
	male, female, is_genderless, hp, attack, defense, sp_atk, sp_def, speed, total, run_id
) VALUES (
	:url, :name, :pokedex_num, :elem_1, :elem_2, :species, :height_meters, :weight_kg,
	:male, :female, :is_genderless, :hp, :attack, :defense, :sp_atk, :sp_def, :speed, :total, :run_id
)
ON CONFLICT (url) DO UPDATE SET
	name = EXCLUDED.name,
	pokedex_num = EXCLUDED.pokedex_num,
	elem_1 = EXCLUDED.elem_1,
	elem_2 = EXCLUDED.elem_2,
	species = EXCLUDED.species,
	height_meters = EXCLUDED.height_meters,
	weight_kg = EXCLUDED.weight_kg,
	male = EXCLUDED.male,
	female = EXCLUDED.female,
	is_genderless = EXCLUDED.is_genderless,
	hp = EXCLUDED.hp,
	attack = EXCLUDED.attack,
	defense = EXCLUDED.defense,
	sp_atk = EXCLUDED.sp_atk,
	sp_def = EXCLUDED.sp_def,
	speed = EXCLUDED.speed,
	total = EXCLUDED.total,
	run_id = EXCLUDED.run_id,
	updated_at = CURRENT_TIMESTAMP`

// pokemonRow is the column mapping of one record.
type pokemonRow struct {
	URL          string   `db:"url"`
	Name         string   `db:"name"`
	PokedexNum   string   `db:"pokedex_num"`
	Elem1        string   `db:"elem_1"`
	Elem2        *string  `db:"elem_2"`
	Species      *string  `db:"species"`
	HeightMeters *float64 `db:"height_meters"`
	WeightKg     *float64 `db:"weight_kg"`
	Male         *float64 `db:"male"`
	Female       *float64 `db:"female"`
	IsGenderless bool     `db:"is_genderless"`
	HP           *int     `db:"hp"`
	Attack       *int     `db:"attack"`
	Defense      *int     `db:"defense"`
	SpAtk        *int     `db:"sp_atk"`
	SpDef        *int     `db:"sp_def"`
	Speed        *int     `db:"speed"`
	Total        *int     `db:"total"`
	RunID        string   `db:"run_id"`
}

func newPokemonRow(runID string, r *EntityRecord) pokemonRow {
	stat := func(s Stat) *int {
		v, ok := r.Stats[s]
		if !ok {
			return nil
		}
		return &v
	}
	return pokemonRow{
		URL:          r.URL,
		Name:         r.Name,
		PokedexNum:   r.CatalogNumber,
		Elem1:        r.PrimaryType,
		Elem2:        r.SecondaryType,
		Species:      r.Species,
		HeightMeters: r.HeightMeters,
		WeightKg:     r.WeightKilograms,
		Male:         r.GenderRatioMale,
		Female:       r.GenderRatioFemale,
		IsGenderless: r.IsGenderless,
		HP:           stat(StatHP),
		Attack:       stat(StatAttack),
		Defense:      stat(StatDefense),
		SpAtk:        stat(StatSpecialAttack),
		SpDef:        stat(StatSpecialDefense),
		Speed:        stat(StatSpeed),
		Total:        r.StatTotal,
		RunID:        runID,
	}
}

// Store mirrors the dataset into PostgreSQL.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewStore wraps an open connection.
func NewStore(db *sqlx.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// OpenStore connects to databaseURL and makes sure the table exists.
func OpenStore(ctx context.Context, databaseURL string, log *zap.Logger) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := NewStore(db, log)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Connected to PostgreSQL")
	return s, nil
}

// Migrate creates the pokemon table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createPokemonTable); err != nil {
		return fmt.Errorf("create pokemon table: %w", err)
	}
	return nil
}

// SaveRecords upserts every record in one transaction, keyed by URL.
func (s *Store) SaveRecords(ctx context.Context, runID string, records []*EntityRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if _, err := tx.NamedExecContext(ctx, upsertPokemon, newPokemonRow(runID, r)); err != nil {
			return fmt.Errorf("upsert %s: %w", r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Info("Stored records", zap.Int("count", len(records)), zap.String("run_id", runID))
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
