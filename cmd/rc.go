package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
)

// rcFiles lists the default-argument files, lowest precedence first
func rcFiles() []string {
	files := []string{filepath.Join(xdg.ConfigHome, "coerce", "coercerc")}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".coercerc"))
	}
	return append(files, ".coercerc")
}

// readArgsFile returns the arguments in file. Each line is expanded against
// the environment and split like a shell would; # starts a comment line.
func readArgsFile(file string) []string {
	f, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Errorf("Failed to close args file: %v", err)
		}
	}()

	var args []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts, err := shellquote.Split(os.ExpandEnv(line))
		if err != nil {
			log.Warnf("Ignoring line in %s: %v", file, err)
			continue
		}
		args = append(args, parts...)
	}
	if err := scanner.Err(); err != nil {
		log.Warnf("Failed to read %s: %v", file, err)
	}
	return args
}

// defaultArgs concatenates the arguments from every rc file that exists
func defaultArgs(files []string) []string {
	var args []string
	for _, file := range files {
		fileArgs := readArgsFile(file)
		if len(fileArgs) > 0 {
			log.Debugf("Loaded %d default arguments from %s", len(fileArgs), file)
		}
		args = append(args, fileArgs...)
	}
	return args
}
