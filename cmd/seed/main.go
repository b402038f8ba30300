package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"eventphotos/internal/config"
	"eventphotos/internal/domain/admin"
	"eventphotos/internal/domain/ranking"
	"eventphotos/internal/pkg/fileutil"
)

func main() {
	password := flag.String("password", "", "print a bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	schemaOut := flag.String("schema", "", "where to write the default category schema (default DATA_DIR/categories.toml)")
	flag.Parse()

	if *password != "" {
		hash, err := admin.HashPassword(*password)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(hash))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	for _, dir := range []string{cfg.UploadDir, cfg.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create %s: %v", dir, err)
		}
	}
	log.Printf("directories ready: uploads=%s data=%s", cfg.UploadDir, cfg.DataDir)

	schemaPath := cfg.RankingSchemaFile
	if *schemaOut != "" {
		schemaPath = *schemaOut
	}
	if schemaPath == "" {
		schemaPath = filepath.Join(cfg.DataDir, "categories.toml")
	}
	if err := writeDefaultSchema(schemaPath); err != nil {
		log.Fatal(err)
	}

	schema, err := ranking.LoadSchema(schemaPath)
	if err != nil {
		log.Fatal(err)
	}

	_, found, err := fileutil.ReadFileIfExists(cfg.RankingPath())
	if err != nil {
		log.Fatal(err)
	}
	if found {
		log.Printf("ranking document exists, leaving it: %s", cfg.RankingPath())
		return
	}

	store, err := ranking.NewStore(ranking.NewFileRepository(cfg.RankingPath(), nil), schema, nil, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	doc, err := store.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	if err := fileutil.WriteJSONAtomic(cfg.RankingPath(), doc); err != nil {
		log.Fatal(err)
	}
	log.Printf("ranking document created: %s (%d categories)", cfg.RankingPath(), len(doc.Categories))
}

func writeDefaultSchema(path string) error {
	var buf bytes.Buffer
	if err := ranking.DefaultSchema().WriteTOML(&buf); err != nil {
		return err
	}
	err := fileutil.CreateAtomic(path, &buf, 0o644)
	switch {
	case errors.Is(err, fileutil.ErrExists):
		log.Printf("schema exists, leaving it: %s", path)
		return nil
	case err != nil:
		return fmt.Errorf("write schema: %w", err)
	}
	log.Printf("default schema written: %s", path)
	return nil
}
