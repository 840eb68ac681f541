package model

import "sort"

// FileRole identifies what a user-supplied file is for.
type FileRole int

const (
	RoleReference FileRole = iota
	RolePeaks
	RoleSignal
	RoleUnknown
)

func (r FileRole) String() string {
	switch r {
	case RoleReference:
		return "reference"
	case RolePeaks:
		return "peaks"
	case RoleSignal:
		return "signal"
	default:
		return "unknown"
	}
}

func ParseFileRole(role string) FileRole {
	switch role {
	case "reference":
		return RoleReference
	case "peaks":
		return RolePeaks
	case "signal":
		return RoleSignal
	default:
		return RoleUnknown
	}
}

// UploadedFile is the metadata the upload collaborator hands over after
// it has stored a file. Parsed reports whether the file was readable as
// its declared format. A file may declare the chrom range it covers;
// an empty Chrom means no range was declared.
type UploadedFile struct {
	Role   FileRole `json:"role"`
	Path   string   `json:"path"`
	Format string   `json:"format"`
	Parsed bool     `json:"parsed"`
	Chrom  string   `json:"chrom,omitempty"`
	Start  int64    `json:"start,omitempty"`
	End    int64    `json:"end,omitempty"`
}

// FileSet maps file roles to the latest uploaded file for that role.
// One per session; only the owning session's event turn touches it.
type FileSet struct {
	files map[FileRole]UploadedFile
}

func NewFileSet() *FileSet {
	return &FileSet{files: make(map[FileRole]UploadedFile)}
}

// Put registers or replaces the file for its role.
func (fs *FileSet) Put(f UploadedFile) {
	fs.files[f.Role] = f
}

func (fs *FileSet) Get(role FileRole) (UploadedFile, bool) {
	f, ok := fs.files[role]
	return f, ok
}

// All returns the registered files in role order.
func (fs *FileSet) All() []UploadedFile {
	roles := make([]int, 0, len(fs.files))
	for role := range fs.files {
		roles = append(roles, int(role))
	}
	sort.Ints(roles)

	files := make([]UploadedFile, 0, len(roles))
	for _, role := range roles {
		files = append(files, fs.files[FileRole(role)])
	}
	return files
}

func (fs *FileSet) Len() int {
	return len(fs.files)
}
