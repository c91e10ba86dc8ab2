package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
)

// ReadURLsFromFile reads crawl roots, one per line. Blank lines and # comments
// are ignored, invalid roots are skipped with a warning, fragments are
// stripped and repeated roots are kept once, first occurrence wins.
func ReadURLsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open URL file: %w", err)
	}
	defer file.Close()

	var roots []string
	seen := make(map[string]int)

	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := models.ValidateURL(line); err != nil {
			Warnf("%s:%d: skipping %q: %v", path, lineNum, line, err)
			continue
		}
		root, err := models.StripFragment(line)
		if err != nil {
			Warnf("%s:%d: skipping %q: %v", path, lineNum, line, err)
			continue
		}

		if first, dup := seen[root]; dup {
			Debugf("%s:%d: %s already listed on line %d", path, lineNum, root, first)
			continue
		}
		seen[root] = lineNum
		roots = append(roots, root)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read URL file: %w", err)
	}

	if len(roots) == 0 {
		return nil, fmt.Errorf("%s contains no valid root URLs", path)
	}

	Infof("loaded %d roots from %s", len(roots), path)
	return roots, nil
}
