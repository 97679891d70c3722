// Package backup archives saved schemas and endpoints, ships archives to a
// remote target and restores them.
package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"apivengers/internal/store"
)

const (
	manifestName    = "manifest.json"
	manifestVersion = 1
)

// Manifest is the content of an archive.
type Manifest struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
	Schemas   []*store.Schema   `json:"schemas"`
	Endpoints []*store.Endpoint `json:"endpoints"`
}

// RestoreStats counts what a restore wrote.
type RestoreStats struct {
	Schemas   int `json:"schemas"`
	Endpoints int `json:"endpoints"`
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func schemaFileName(s *store.Schema) string {
	return fmt.Sprintf("schemas/%s-%s.js", unsafeName.ReplaceAllString(s.Name, "_"), s.ID)
}

// Collect reads every schema and the endpoints of every schema name.
func Collect(ctx context.Context, st store.Store, now time.Time) (*Manifest, error) {
	schemas, err := st.ListSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	m := &Manifest{
		Version:   manifestVersion,
		CreatedAt: now.UTC(),
		Schemas:   schemas,
		Endpoints: []*store.Endpoint{},
	}
	seen := map[string]bool{}
	for _, s := range schemas {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		eps, err := st.ListEndpoints(ctx, s.Name)
		if err != nil {
			return nil, fmt.Errorf("list endpoints for %s: %w", s.Name, err)
		}
		m.Endpoints = append(m.Endpoints, eps...)
	}
	return m, nil
}

// Archive packs the store into a tar.gz holding manifest.json plus one .js
// file per schema.
func Archive(ctx context.Context, st store.Store, now time.Time) ([]byte, *Manifest, error) {
	m, err := Collect(ctx, st, now)
	if err != nil {
		return nil, nil, err
	}
	data, err := Pack(m)
	if err != nil {
		return nil, nil, err
	}
	return data, m, nil
}

// Pack writes m as a tar.gz archive.
func Pack(m *Manifest) ([]byte, error) {
	buf := new(bytes.Buffer)
	gzWriter := gzip.NewWriter(buf)
	tarWriter := tar.NewWriter(gzWriter)

	addFile := func(name string, data []byte) error {
		header := &tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(data)),
			ModTime:  m.CreatedAt,
			Typeflag: tar.TypeReg,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header: %w", err)
		}
		if _, err := tarWriter.Write(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		return nil
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := addFile(manifestName, manifest); err != nil {
		return nil, err
	}
	for _, s := range m.Schemas {
		if err := addFile(schemaFileName(s), []byte(s.MongooseSchema)); err != nil {
			return nil, err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := gzWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadManifest extracts the manifest from an archive.
func ReadManifest(data []byte) (*Manifest, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar header: %w", err)
		}
		if header.Name != manifestName {
			continue
		}
		var m Manifest
		if err := json.NewDecoder(tarReader).Decode(&m); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
		if m.Version != manifestVersion {
			return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
		}
		return &m, nil
	}
	return nil, errors.New("archive has no manifest")
}

// Restore saves every schema and endpoint of an archive into st. Records
// get new ids; schemas are saved oldest first so list order is kept.
// Endpoints replace whatever is stored under the same schema name.
func Restore(ctx context.Context, st store.Store, data []byte) (RestoreStats, error) {
	var stats RestoreStats
	m, err := ReadManifest(data)
	if err != nil {
		return stats, err
	}

	for i := len(m.Schemas) - 1; i >= 0; i-- {
		s := m.Schemas[i]
		if _, err := st.SaveSchema(ctx, s.Name, s.MongooseSchema); err != nil {
			return stats, fmt.Errorf("restore schema %s: %w", s.Name, err)
		}
		stats.Schemas++
	}

	var order []string
	groups := map[string][]store.Endpoint{}
	for _, e := range m.Endpoints {
		if _, ok := groups[e.SchemaName]; !ok {
			order = append(order, e.SchemaName)
		}
		groups[e.SchemaName] = append(groups[e.SchemaName], *e)
	}
	for _, name := range order {
		n, err := st.ReplaceEndpoints(ctx, name, groups[name])
		if err != nil {
			return stats, fmt.Errorf("restore endpoints for %s: %w", name, err)
		}
		stats.Endpoints += n
	}
	return stats, nil
}
