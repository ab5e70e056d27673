// Command seed loads a YAML fixture of verified accounts, reverse index
// entries and API keys into the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/linkgate/internal/adapters/repository"
	"github.com/poyrazK/linkgate/internal/config"
	"github.com/poyrazK/linkgate/internal/core/domain"
	"github.com/poyrazK/linkgate/internal/core/ports"
	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Accounts []AccountFixture `yaml:"accounts"`
	// Links maps a secondary id to the primary ids verified against it.
	Links   map[string][]string `yaml:"links"`
	APIKeys []KeyFixture        `yaml:"api_keys"`
}

type AccountFixture struct {
	ID          int64           `yaml:"id"`
	DisplayName string          `yaml:"display_name"`
	Privacy     *domain.Privacy `yaml:"privacy"`
}

// KeyFixture is an API key given in raw form. An empty Key is generated.
type KeyFixture struct {
	Key         string `yaml:"key"`
	AccessLevel int    `yaml:"access_level"`
	Issuer      string `yaml:"issuer"`
}

func main() {
	path := flag.String("f", "fixtures.yaml", "Path to the YAML fixture")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	fixture, err := loadFixture(*path)
	if err != nil {
		log.Fatalf("failed to load fixture: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}()

	if err := seed(ctx, store, fixture, os.Stdout); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func loadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, err
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// seed writes every fixture entry to w. Generated API keys are printed to out
// since only their hash is stored.
func seed(ctx context.Context, w ports.KVWriter, f *Fixture, out io.Writer) error {
	for _, a := range f.Accounts {
		_, doc, err := domain.NewAccount(a.ID, a.DisplayName, a.Privacy)
		if err != nil {
			return fmt.Errorf("account %d: %w", a.ID, err)
		}
		if err := w.Set(ctx, ports.NamespaceVerifications, strconv.FormatInt(a.ID, 10), doc); err != nil {
			return fmt.Errorf("write account %d: %w", a.ID, err)
		}
	}

	for secondaryID, primaryIDs := range f.Links {
		if err := domain.ValidateAccountID(domain.DirectorySecondary, secondaryID); err != nil {
			return err
		}
		for _, id := range primaryIDs {
			if err := domain.ValidateAccountID(domain.DirectoryPrimary, id); err != nil {
				return fmt.Errorf("links of %s: %w", secondaryID, err)
			}
		}
		doc, err := domain.LinkedIDsDocument(primaryIDs)
		if err != nil {
			return err
		}
		if err := w.Set(ctx, ports.NamespaceVerifications, secondaryID, doc); err != nil {
			return fmt.Errorf("write links of %s: %w", secondaryID, err)
		}
	}

	for _, k := range f.APIKeys {
		raw := k.Key
		if raw == "" {
			raw = "lg_" + uuid.NewString()
			fmt.Fprintf(out, "generated key (level %d): %s\n", k.AccessLevel, raw)
		}
		doc, err := (&domain.APIKey{AccessLevel: k.AccessLevel, CreatedAt: time.Now(), Issuer: k.Issuer}).Document()
		if err != nil {
			return err
		}
		if err := w.Set(ctx, ports.NamespaceAPIKeys, domain.HashAPIKey(raw), doc); err != nil {
			return fmt.Errorf("write api key: %w", err)
		}
	}

	fmt.Fprintf(out, "seeded %d accounts, %d reverse index entries, %d api keys\n",
		len(f.Accounts), len(f.Links), len(f.APIKeys))
	return nil
}
