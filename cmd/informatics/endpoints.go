package informatics

import (
	"net/url"
	"strings"
)

const DefaultURL = "https://informatics.msk.ru"

type endpoints struct {
	base string
}

func newEndpoints(base string) endpoints {
	return endpoints{base: strings.TrimSuffix(base, "/")}
}

func (e endpoints) login() string {
	return e.base + "/login/index.php"
}

func (e endpoints) statement() string {
	return e.base + "/mod/statements/view3.php"
}

func (e endpoints) runs(problemID string) string {
	return e.base + "/py/problem/" + url.PathEscape(problemID) + "/filter-runs"
}

func (e endpoints) source() string {
	return e.base + "/ajax/ajax_file.php"
}

func (e endpoints) submit(problemID string) string {
	return e.base + "/py/problem/" + url.PathEscape(problemID) + "/submit"
}
