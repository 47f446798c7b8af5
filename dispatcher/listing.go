package dispatcher

import (
	"os"
	"path/filepath"

	"github.com/nvr-ai/imgpad/images"
)

// Job is one source image and the PNG it is written to.
type Job struct {
	// Source is the input image path.
	Source string
	// Dest is the output PNG path.
	Dest string
}

// plan is the outcome of scanning the input folder.
type plan struct {
	// jobs to run, in name order.
	jobs []Job
	// after[i] is the index of the previous job writing the same
	// destination, or -1.
	after []int
	// shared lists jobs whose destination is written again by a later job.
	shared []Job
	// skipped counts directories and unsupported entries.
	skipped int
}

// scanDirectory lists the direct entries of inputDir and builds one job per
// supported image.
//
// Arguments:
//   - inputDir: Directory to scan, not recursed into.
//   - outputDir: Directory outputs are written to.
//
// Returns:
//   - plan: Jobs in name order, shared destinations and the skipped count.
//   - error: If the directory cannot be read.
func scanDirectory(inputDir, outputDir string) (plan, error) {
	// os.ReadDir returns entries sorted by file name.
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return plan{}, err
	}

	var p plan
	for _, entry := range entries {
		path := filepath.Join(inputDir, entry.Name())
		if isDir(entry, path) || !images.IsSupported(entry.Name()) {
			p.skipped++
			continue
		}

		p.jobs = append(p.jobs, Job{
			Source: path,
			Dest:   filepath.Join(outputDir, images.OutputName(entry.Name())),
		})
	}

	// photo.jpg and photo.png both become photo.png. Both are fitted in name
	// order, so the last one that succeeds owns the output.
	prev := make(map[string]int, len(p.jobs))
	p.after = make([]int, len(p.jobs))
	for i, job := range p.jobs {
		p.after[i] = -1
		if j, ok := prev[job.Dest]; ok {
			p.after[i] = j
			p.shared = append(p.shared, p.jobs[j])
		}
		prev[job.Dest] = i
	}

	return p, nil
}

func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
