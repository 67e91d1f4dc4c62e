// Package modelstore provisions and loads the fitted model artifacts at
// startup. Missing files are fetched once from remote object storage;
// any failure here is fatal by contract, since serving without models is
// meaningless.
package modelstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/moodflick/backend/internal/analysis/emotion"
	"github.com/moodflick/backend/internal/mlcodec"
)

// Artifacts is the full set of loaded models, shape-negotiated into the
// uniform provider interface.
type Artifacts struct {
	Main *emotion.Classifier
	Sub  emotion.SubProvider
}

// Store knows where artifacts live locally and remotely.
type Store struct {
	dir     string
	baseURL string
	client  *http.Client
}

// New creates a store rooted at dir. baseURL may be empty when all
// artifacts are expected to exist locally.
func New(dir, baseURL string) *Store {
	return &Store{
		dir:     dir,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

var artifactFiles = []string{
	mlcodec.FileMainVectorizer,
	mlcodec.FileMainModel,
	mlcodec.FileSubVectorizers,
	mlcodec.FileSubModels,
}

// Load ensures every artifact exists locally, downloading absentees, and
// loads them. The sub-emotion pair is classified into its Single or
// PerLabel shape exactly once, here.
func (s *Store) Load(ctx context.Context) (*Artifacts, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("modelstore: create %s: %w", s.dir, err)
	}
	for _, name := range artifactFiles {
		if err := s.ensure(ctx, name); err != nil {
			return nil, err
		}
	}

	mainVec, err := mlcodec.LoadVectorizer(filepath.Join(s.dir, mlcodec.FileMainVectorizer))
	if err != nil {
		return nil, err
	}
	mainForest, err := mlcodec.LoadForest(filepath.Join(s.dir, mlcodec.FileMainModel))
	if err != nil {
		return nil, err
	}
	classifier, err := emotion.NewClassifier(mainVec, mainForest)
	if err != nil {
		return nil, err
	}

	subVec, subVecs, err := mlcodec.LoadSubVectorizers(filepath.Join(s.dir, mlcodec.FileSubVectorizers))
	if err != nil {
		return nil, err
	}
	subForest, subForests, err := mlcodec.LoadSubForests(filepath.Join(s.dir, mlcodec.FileSubModels))
	if err != nil {
		return nil, err
	}

	var sub emotion.SubProvider
	switch {
	case subVecs != nil && subForests != nil:
		provider := emotion.NewPerLabel(subVecs, subForests)
		log.Printf("[modelstore] sub-emotion models loaded per label: %v", provider.Labels())
		sub = provider
	case subVec != nil && subForest != nil:
		log.Printf("[modelstore] shared sub-emotion model loaded")
		sub = emotion.NewSingle(subVec, subForest)
	default:
		return nil, fmt.Errorf("modelstore: sub vectorizer and sub model artifacts have mismatched shapes")
	}

	return &Artifacts{Main: classifier, Sub: sub}, nil
}

// ensure downloads name from the remote base URL unless it already
// exists locally.
func (s *Store) ensure(ctx context.Context, name string) error {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if s.baseURL == "" {
		return fmt.Errorf("modelstore: %s missing and no MODEL_BASE_URL configured", name)
	}

	url := s.baseURL + "/" + name
	log.Printf("[modelstore] downloading %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("modelstore: build request for %s: %w", name, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("modelstore: fetch %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("modelstore: fetch %s: unexpected status %d", name, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("modelstore: temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("modelstore: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("modelstore: close %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), path)
}
