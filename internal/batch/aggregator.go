// Package batch runs document conversion over a directory tree.
package batch

import (
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/pdf-txt/internal/logging"
)

// ClassGroup is the set of documents found under one class folder.
type ClassGroup struct {
	Class string   // Top-level folder name, "" for files directly in the root
	Files []string // Document paths in discovery order
}

// ClassOf returns the first path element of file relative to root, or "" when
// file sits directly in root or outside it.
func ClassOf(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// GroupByClass groups discovered documents by class folder, sorted by class.
func GroupByClass(root string, files []string, logger logging.Logger) []ClassGroup {
	index := make(map[string]*ClassGroup)
	for _, file := range files {
		class := ClassOf(root, file)
		group, exists := index[class]
		if !exists {
			group = &ClassGroup{Class: class}
			index[class] = group
		}
		group.Files = append(group.Files, file)
	}

	groups := make([]ClassGroup, 0, len(index))
	for _, group := range index {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Class < groups[j].Class
	})

	if logger != nil {
		for _, g := range groups {
			logger.Debug("Documents in class",
				logging.F("class", g.Class),
				logging.F(logging.FieldCount, len(g.Files)))
		}
		logger.Info("Grouped documents by class",
			logging.F("total_files", len(files)),
			logging.F("classes", len(groups)))
	}
	return groups
}
