package trash

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/babarot/rim/internal/core/types"
)

// hashPrefixLen is the number of content hash characters embedded in a
// trash file name
const hashPrefixLen = 7

// Generator derives trash locations inside a trash directory
type Generator struct {
	TrashDir string
}

// GenerateTrashPath returns the location meta is stored at inside trashDir.
// The short content hash is inserted between the stem and the extension of
// the original base name, e.g. report.txt becomes report_abc1234.txt.
func GenerateTrashPath(trashDir string, meta types.Metadata) string {
	return Generator{TrashDir: trashDir}.Path(meta, 0)
}

// Path returns the trash location for meta. A positive attempt appends a
// numeric suffix to the hash segment and is used when the plain location is
// already occupied.
func (g Generator) Path(meta types.Metadata, attempt int) string {
	return filepath.Join(g.TrashDir, trashName(filepath.Base(meta.OriginalPath), meta.ContentHash, attempt))
}

func trashName(base, hash string, attempt int) string {
	stem, ext := splitExt(base)
	if len(hash) > hashPrefixLen {
		hash = hash[:hashPrefixLen]
	}
	var b strings.Builder
	b.WriteString(stem)
	b.WriteByte('_')
	b.WriteString(hash)
	if attempt > 0 {
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(attempt))
	}
	b.WriteString(ext)
	return b.String()
}

// splitExt splits name at its last dot. The stem is never empty, so dot files
// like .bashrc have no extension.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}
