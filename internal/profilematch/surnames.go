package profilematch

import "github.com/sells-group/derm-scout/internal/textnorm"

// commonSurnames are the most frequent US family names. Profiles matching
// only on one of these need a given-name signal to count.
var commonSurnames = toSet(
	"smith", "johnson", "williams", "brown", "jones", "garcia", "miller", "davis",
	"rodriguez", "martinez", "hernandez", "lopez", "gonzalez", "wilson", "anderson",
	"thomas", "taylor", "moore", "jackson", "martin", "lee", "thompson", "white",
	"harris", "clark", "lewis", "robinson", "walker", "hall", "allen", "young",
	"king", "wright", "hill", "scott", "green", "adams", "baker", "nelson",
	"mitchell", "roberts", "carter", "phillips", "evans", "turner", "torres",
	"parker", "collins", "edwards", "stewart", "morris", "rogers", "reed", "cook",
	"morgan", "bell", "murphy", "bailey", "rivera", "cooper", "richardson", "cox",
	"howard", "ward", "peterson", "gray", "james", "watson", "brooks", "kelly",
	"sanders", "price", "bennett", "wood", "barnes", "ross", "henderson", "coleman",
	"jenkins", "perry", "powell", "long", "patterson", "hughes", "flores",
	"washington", "butler", "simmons", "foster", "gonzales", "bryant", "alexander",
	"russell", "griffin", "diaz", "hayes", "myers", "ford", "hamilton", "graham",
	"sullivan", "wallace", "woods", "cole", "west", "jordan", "owens", "reynolds",
	"fisher", "ellis", "harrison", "gibson", "mcdonald", "cruz", "marshall", "ortiz",
	"gomez", "murray", "freeman", "wells", "webb", "simpson", "stevens", "tucker",
	"porter", "hunter", "hicks", "crawford", "henry", "boyd", "mason", "morales",
	"kennedy", "warren", "dixon", "ramos", "reyes", "burns", "gordon", "shaw",
	"holmes", "rice", "robertson", "hunt", "black", "daniels", "palmer", "mills",
	"nichols", "grant", "knight", "ferguson", "rose", "stone", "hawkins", "dunn",
	"perkins", "hudson", "spencer", "gardner", "stephens", "payne", "pierce",
	"berry", "matthews", "arnold", "wagner", "willis", "ray", "watkins", "olson",
	"carroll", "duncan", "snyder", "hart", "cunningham", "bradley", "lane",
	"andrews", "ruiz", "harper", "fox", "riley", "armstrong", "carpenter", "weaver",
	"greene", "lawrence", "elliott", "chavez", "sims", "austin", "peters", "kelley",
	"franklin", "lawson",
)

func toSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// IsCommonSurname reports whether name is one of the common family names.
func IsCommonSurname(name string) bool {
	_, ok := commonSurnames[textnorm.Fold(name)]
	return ok
}
