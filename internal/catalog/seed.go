package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/soodoh/openfit/internal/apperr"
)

// SeedFile is the YAML layout of a catalog seed. Exercises reference lookups
// by name.
type SeedFile struct {
	Equipment       []string       `yaml:"equipment"`
	Categories      []string       `yaml:"categories"`
	MuscleGroups    []string       `yaml:"muscleGroups"`
	WeightUnits     []string       `yaml:"weightUnits"`
	RepetitionUnits []SeedRepUnit  `yaml:"repetitionUnits"`
	Exercises       []SeedExercise `yaml:"exercises"`
}

type SeedRepUnit struct {
	Name      string `yaml:"name"`
	TimeBased bool   `yaml:"timeBased"`
}

type SeedExercise struct {
	Name             string   `yaml:"name"`
	Equipment        string   `yaml:"equipment"`
	Category         string   `yaml:"category"`
	Level            Level    `yaml:"level"`
	Force            string   `yaml:"force"`
	Mechanic         string   `yaml:"mechanic"`
	PrimaryMuscles   []string `yaml:"primaryMuscles"`
	SecondaryMuscles []string `yaml:"secondaryMuscles"`
	Instructions     []string `yaml:"instructions"`
	Images           []string `yaml:"images"`
}

func ParseSeed(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}
	return &seed, nil
}

type SeedStats struct {
	Lookups   int
	Exercises int
}

// Seed inserts the seed contents. Lookups that already exist (by name) are
// reused, so a seed can be applied repeatedly.
func (s *Service) Seed(ctx context.Context, seed *SeedFile) (SeedStats, error) {
	var stats SeedStats

	ids := make(map[Kind]map[string]uuid.UUID, len(Kinds))
	ensure := func(kind Kind, name string, timeBased bool) error {
		if ids[kind] == nil {
			existing, err := s.store.ListLookups(ctx, kind)
			if err != nil {
				return err
			}
			ids[kind] = make(map[string]uuid.UUID, len(existing))
			for _, l := range existing {
				ids[kind][l.Name] = l.ID
			}
		}
		if _, ok := ids[kind][name]; ok {
			return nil
		}
		l, err := s.Apply(ctx, Mutation{Kind: kind, Action: ActionCreate, Name: name, TimeBased: timeBased})
		if err != nil {
			return fmt.Errorf("seed %s %q: %w", kind, name, err)
		}
		ids[kind][l.Name] = l.ID
		stats.Lookups++
		return nil
	}

	groups := []struct {
		kind  Kind
		names []string
	}{
		{KindEquipment, seed.Equipment},
		{KindCategory, seed.Categories},
		{KindMuscleGroup, seed.MuscleGroups},
		{KindWeightUnit, seed.WeightUnits},
	}
	for _, g := range groups {
		for _, name := range g.names {
			if err := ensure(g.kind, name, false); err != nil {
				return stats, err
			}
		}
	}
	for _, u := range seed.RepetitionUnits {
		if err := ensure(KindRepetitionUnit, u.Name, u.TimeBased); err != nil {
			return stats, err
		}
	}

	resolve := func(kind Kind, name string) (uuid.UUID, error) {
		if err := ensure(kind, name, false); err != nil {
			return uuid.Nil, err
		}
		return ids[kind][name], nil
	}

	for _, se := range seed.Exercises {
		exists, err := s.exerciseNamed(ctx, se.Name)
		if err != nil {
			return stats, err
		}
		if exists {
			continue
		}

		e := &Exercise{
			Name:         se.Name,
			Level:        se.Level,
			Instructions: se.Instructions,
			Images:       se.Images,
		}
		if se.Equipment != "" {
			id, err := resolve(KindEquipment, se.Equipment)
			if err != nil {
				return stats, err
			}
			e.EquipmentID = &id
		}
		if se.Category != "" {
			categoryID, err := resolve(KindCategory, se.Category)
			if err != nil {
				return stats, err
			}
			e.CategoryID = categoryID
		}
		if se.Force != "" {
			e.Force = &se.Force
		}
		if se.Mechanic != "" {
			e.Mechanic = &se.Mechanic
		}
		for _, m := range se.PrimaryMuscles {
			id, err := resolve(KindMuscleGroup, m)
			if err != nil {
				return stats, err
			}
			e.PrimaryMuscleIDs = append(e.PrimaryMuscleIDs, id)
		}
		for _, m := range se.SecondaryMuscles {
			id, err := resolve(KindMuscleGroup, m)
			if err != nil {
				return stats, err
			}
			e.SecondaryMuscleIDs = append(e.SecondaryMuscleIDs, id)
		}

		if err := s.CreateExercise(ctx, e); err != nil {
			if apperr.IsClientError(err) {
				log.Warnf("seed: skipping exercise %q: %s", se.Name, err)
				continue
			}
			return stats, err
		}
		stats.Exercises++
	}

	return stats, nil
}

func (s *Service) exerciseNamed(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	found, err := s.store.FindExercises(ctx, ExerciseQuery{
		Filter: ExerciseFilter{Query: name},
		Limit:  1,
	})
	if err != nil {
		return false, err
	}
	return len(found) == 1 && strings.EqualFold(found[0].Name, name), nil
}
