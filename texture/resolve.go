package texture

import (
	"errors"
	"log"
	"os"
	"path/filepath"
)

// Resolver locates the texture file on disk. The file system hooks are swappable for tests.
type Resolver struct {
	Stat  func(string) (os.FileInfo, error)
	Getwd func() (string, error)
}

func NewResolver() *Resolver {
	return &Resolver{Stat: os.Stat, Getwd: os.Getwd}
}

// Resolution records every path that was tried and which one, if any, exists.
type Resolution struct {
	Tried []string
	Path  string
	Found bool
}

// Resolve looks for the texture. An absolute override is tried on its own. Otherwise the relative path is tried
// first and then the same path joined onto the current working directory.
func (r *Resolver) Resolve(relative, absolute string) Resolution {
	res := Resolution{}
	cwd, err := r.Getwd()
	if err != nil {
		log.Printf("Could not read working directory: %v", err)
	} else {
		log.Printf("Working directory: %s", cwd)
	}

	candidates := []string{relative}
	if absolute != "" {
		candidates = []string{absolute}
	} else if err == nil && !filepath.IsAbs(relative) {
		candidates = append(candidates, filepath.Join(cwd, relative))
	}

	for i, p := range candidates {
		if i == 0 {
			log.Printf("Trying texture path: %s", p)
		} else {
			log.Printf("Relative texture path not found, trying: %s", p)
		}
		res.Tried = append(res.Tried, p)
		if r.exists(p) {
			log.Printf("Texture file exists: %s", p)
			res.Path = p
			res.Found = true
			return res
		}
	}
	last := res.Tried[len(res.Tried)-1]
	log.Printf("Texture file NOT found: %s", last)
	log.Printf("Place the texture at %s relative to the working directory or set texture.absolutePath", relative)
	return res
}

func (r *Resolver) exists(p string) bool {
	fi, err := r.Stat(p)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Could not stat %s: %v", p, err)
		}
		return false
	}
	return !fi.IsDir()
}
