package generate

import "text/template"

const (
	runScript   = "run_autograder"
	setupScript = "setup.sh"
	reqsEntry   = "requirements.R"
	configEntry = "autograder.yaml"
)

type templateData struct {
	Requirements string
	Overwrite    bool
}

var templates = map[string]*template.Template{
	runScript: template.Must(template.New(runScript).Parse(`#!/usr/bin/env bash
set -e

cp -r /autograder/source/tests /autograder/submission/
if [ -d /autograder/source/files ]; then
    cp -r /autograder/source/files/. /autograder/submission/
fi

autograder run --dir /autograder --config /autograder/source/autograder.yaml
`)),
	setupScript: template.Must(template.New(setupScript).Parse(`#!/usr/bin/env bash
set -e

apt-get update
apt-get install -y r-base pandoc texlive-xetex texlive-fonts-recommended texlive-plain-generic

Rscript /autograder/source/requirements.R
`)),
	reqsEntry: template.Must(template.New(reqsEntry).Parse(`{{if not .Overwrite -}}
install.packages(c(
    "remotes",
    "jsonlite",
    "knitr",
    "rmarkdown",
    "testthat"
), dependencies = TRUE, repos = "https://cran.r-project.org")

remotes::install_github("ucbds-infra/ottr@stable", upgrade = FALSE)
{{end -}}
{{.Requirements}}`)),
}
