package config

import (
	"errors"
	"fmt"
)

type Language string

const (
	LanguageR Language = "r"
)

// LanguageConfig defines how submissions of one language are located,
// converted and run.
type LanguageConfig struct {
	ImageName    string // runtime image for the docker backend
	Interpreter  string // evaluates a single expression: <Interpreter> -e <expr>
	NotebookGlob string
	LiterateGlob string
	LiterateExt  string
	ScriptGlob   string
	ScriptExt    string
	// Expression templates, each filled with quoted file names.
	ExtractExpr string // literate document → script
	RenderExpr  string // literate document → pdf
	GradeExpr   string // script → results json on stdout
}

var LanguageConfigs = map[Language]LanguageConfig{
	LanguageR: {
		ImageName:    "autograder-r:latest",
		Interpreter:  "Rscript",
		NotebookGlob: "*.ipynb",
		LiterateGlob: "*.Rmd",
		LiterateExt:  ".Rmd",
		ScriptGlob:   "*.[Rr]",
		ScriptExt:    ".r",
		ExtractExpr:  "knitr::purl(%s, %s)",
		RenderExpr:   "rmarkdown::render(%s, 'pdf_document', %s)",
		GradeExpr:    "cat(ottr::run_autograder(%s))",
	},
}

// AutograderConfig holds the per-run options of the grading pipeline.
type AutograderConfig struct {
	Language      Language `yaml:"language"`
	Token         string   `yaml:"token"`        // enables pdf generation and upload
	PDF           bool     `yaml:"pdf"`          // pdf without upload
	Filtering     bool     `yaml:"filtering"`    // passed to the notebook exporter
	PageBreaks    bool     `yaml:"pageBreaks"`   // passed to the notebook exporter
	CourseID      string   `yaml:"courseID"`     // upload target
	AssignmentID  string   `yaml:"assignmentID"` // upload target
	RuntimePath   string   `yaml:"runtimePath"`  // <RuntimePath>/bin is prepended to PATH
	Backend       string   `yaml:"backend"`      // local | docker
	GradescopeURL string   `yaml:"gradescopeURL"`
	// docker backend
	ContainerPoolSize int `yaml:"containerPoolSize"`
	MemoryLimitMB     int `yaml:"memoryLimitMB"`
}

func (AutograderConfig) Key() string {
	return "autograder"
}

func (c AutograderConfig) Validate() error {
	if _, ok := LanguageConfigs[c.Language]; !ok {
		return fmt.Errorf("unsupported language: %q", c.Language)
	}
	if c.Token != "" && (c.CourseID == "" || c.AssignmentID == "") {
		return errors.New("a token requires courseID and assignmentID")
	}
	return nil
}
