package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
)

func TestStatusService_List(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tool-linux-amd64.tar.gz"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Sources: []config.Source{
		{Name: "zeta", Owner: "acme", Repo: "tool", Asset: "tool-{os}-{arch}.tar.gz", Output: dir},
		{Name: "alpha", Owner: "acme", Repo: "other", Asset: "other.zip", Output: dir},
	}}
	detector := platform.StaticDetector{Info: &platform.Info{OS: "linux", Arch: "amd64"}}

	result, err := NewStatusService(&mockLoader{cfg: cfg}, detector).List(context.Background(), StatusRequest{ConfigPath: "relfetch.lua"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if result.Platform.String() != "linux/amd64" {
		t.Errorf("Platform = %s", result.Platform)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("Sources = %+v", result.Sources)
	}
	if result.Sources[0].Source.Name != "alpha" || result.Sources[0].Status != config.StatusMissing {
		t.Errorf("Sources[0] = %+v", result.Sources[0])
	}
	if result.Sources[1].Source.Name != "zeta" || result.Sources[1].Status != config.StatusPresent {
		t.Errorf("Sources[1] = %+v", result.Sources[1])
	}
}

func TestStatusService_List_Errors(t *testing.T) {
	detector := platform.StaticDetector{Info: &platform.Info{OS: "linux", Arch: "amd64"}}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewStatusService(&mockLoader{cfg: &config.Config{}}, detector).List(ctx, StatusRequest{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("load", func(t *testing.T) {
		_, err := NewStatusService(&mockLoader{err: errors.New("bad")}, detector).List(context.Background(), StatusRequest{})
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("detector", func(t *testing.T) {
		_, err := NewStatusService(&mockLoader{cfg: &config.Config{}}, platform.StaticDetector{}).List(context.Background(), StatusRequest{})
		if err == nil {
			t.Error("expected error from detector without info")
		}
	})
}
