package pipeline

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// ManpagePaths locates a built man page.
type ManpagePaths struct {
	Name     string
	Section  int
	ManPath  string
	GzipPath string
	HTMLPath string
}

// ParseManpagePath parses an output-relative man page path such as
// "man/man1/geogig-init.1" or its ".gz" sibling.
func ParseManpagePath(relativePath string) (ManpagePaths, error) {
	rel := path.Clean(strings.TrimPrefix(relativePath, "/"))
	idx := strings.Index(rel, "man/")
	if idx != 0 {
		return ManpagePaths{}, fmt.Errorf("missing man/ segment")
	}
	rel = rel[len("man/"):]

	base := strings.TrimSuffix(rel, ".gz")
	dir, file := path.Split(base)
	section := parseSection(strings.TrimSuffix(dir, "/"))
	name, fileSection := splitFileName(file)
	if section == 0 {
		section = fileSection
	}
	if name == "" || section == 0 {
		return ManpagePaths{}, fmt.Errorf("no section in %q", relativePath)
	}
	if fileSection != 0 && fileSection != section {
		return ManpagePaths{}, fmt.Errorf("section directory and suffix differ in %q", relativePath)
	}
	return PathsFor(name, section), nil
}

// PathsFor returns the output paths of page name in section.
func PathsFor(name string, section int) ManpagePaths {
	sec := strconv.Itoa(section)
	manPath := path.Join("man", "man"+sec, name+"."+sec)
	return ManpagePaths{
		Name:     name,
		Section:  section,
		ManPath:  manPath,
		GzipPath: manPath + ".gz",
		HTMLPath: path.Join("html", name+".html"),
	}
}

// parseSection reads the digit of a "manN" directory.
func parseSection(dir string) int {
	if len(dir) != 4 || !strings.HasPrefix(dir, "man") {
		return 0
	}
	section, err := strconv.Atoi(dir[3:])
	if err != nil || section < 1 {
		return 0
	}
	return section
}

// splitFileName splits "geogig-init.1" into its name and section.
func splitFileName(file string) (string, int) {
	idx := strings.LastIndex(file, ".")
	if idx <= 0 || idx == len(file)-1 {
		return file, 0
	}
	section, err := strconv.Atoi(file[idx+1:])
	if err != nil || section < 1 || section > 9 {
		return file, 0
	}
	return file[:idx], section
}
