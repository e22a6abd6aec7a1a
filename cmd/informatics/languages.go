package informatics

import (
	"golang.org/x/exp/slices"
)

// Language supported by the judge
type Language struct {
	ID   int
	Name string
}

var languages = map[int]string{
	1:  "Free Pascal 2.6.2",
	2:  "GNU C 4.9",
	3:  "GNU C++ 4.9",
	8:  "Borland Delphi 6 - 14.5",
	9:  "FreeBASIC 1.00.0",
	10: "Mono C# 2.4.4",
	18: "Java JDK 1.7",
	22: "PHP 5.2.17",
	23: "Python 2.7",
	25: "Perl 5.10.1",
	27: "Python 3.3",
	28: "Ruby 1.9.3",
	29: "GNU C++ 4.9 with C++11",
	30: "Haskell GHC 7.8.4",
	32: "Go 1.4",
}

// Languages returns language table ordered by id
func Languages() []Language {
	ids := make([]int, 0, len(languages))
	for id := range languages {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	list := make([]Language, 0, len(ids))
	for _, id := range ids {
		list = append(list, Language{ID: id, Name: languages[id]})
	}

	return list
}

// LanguageName returns name of the language and false if id is unknown
func LanguageName(id int) (string, bool) {
	name, ok := languages[id]
	return name, ok
}
