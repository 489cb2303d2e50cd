package landmarks

import "strings"

// Словарь признаков достопримечательностей. Материал считается
// «про достопримечательность», если его текст содержит хотя бы одно
// из этих слов.
var landmarkKeywords = []string{
	// Архитектурные сооружения
	"castle", "palace", "tower", "cathedral", "church", "temple", "monument", "statue",
	"museum", "fortress", "bridge", "gate", "wall", "ruins", "archaeological", "historic",
	"basilica", "chapel", "abbey", "monastery", "convent", "mosque", "synagogue", "shrine",
	"mausoleum", "tomb", "crypt", "catacombs", "dome", "spire", "minaret", "bell tower",
	"clock tower", "lighthouse", "observatory", "planetarium", "aqueduct", "viaduct",
	"colonnade", "arcade", "portico", "rotunda", "pavilion", "gazebo", "obelisk",

	// Исторические периоды и стили
	"ancient", "medieval", "renaissance", "baroque", "gothic", "roman", "victorian",
	"byzantine", "romanesque", "art nouveau", "art deco", "neoclassical", "modernist",
	"prehistoric", "bronze age", "iron age", "classical", "hellenistic", "imperial",

	// Культурные и религиозные места
	"heritage", "cultural", "sacred", "holy", "pilgrimage", "sanctuary", "altar",
	"relic", "icon", "fresco", "mosaic", "stained glass", "carving", "sculpture",
	"artwork", "masterpiece", "treasure", "collection", "exhibition", "gallery",

	// Природные и ландшафтные объекты
	"garden", "park", "plaza", "square", "courtyard", "terrace", "balcony",
	"fountain", "waterfall", "cave", "grotto", "cliff", "peak", "summit",
	"valley", "canyon", "gorge", "river", "lake", "island", "peninsula",

	// Известные объекты
	"eiffel", "colosseum", "acropolis", "stonehenge", "machu picchu", "taj mahal",
	"great wall", "pyramid", "sphinx", "notre dame", "westminster", "buckingham",
	"versailles", "louvre", "pantheon", "trevi fountain", "sistine chapel",
	"big ben", "london eye", "tower bridge", "st paul", "canterbury", "york minster",
	"sagrada familia", "alhambra", "seville cathedral", "prado", "reina sofia",
	"brandenburg gate", "neuschwanstein", "heidelberg", "cologne cathedral",
	"st peter", "vatican", "florence cathedral", "leaning tower", "pisa",
	"milan cathedral", "venice", "grand canal", "rialto bridge", "st mark",
	"parthenon", "delphi", "mycenae", "knossos", "santorini", "mykonos",
	"hagia sophia", "blue mosque", "topkapi", "galata tower", "bosphorus",
	"kremlin", "red square", "st basil", "hermitage", "peterhof", "catherine palace",
	"mount fuji", "tokyo tower", "senso-ji", "meiji shrine", "golden pavilion",
	"forbidden city", "summer palace", "temple of heaven", "terracotta army",
	"angkor wat", "bali", "borobudur", "petronas towers", "marina bay",
	"opera house", "harbour bridge", "uluru", "great barrier reef",
	"christ redeemer", "iguazu", "nazca lines", "easter island",
	"niagara falls", "grand canyon", "yellowstone", "yosemite", "mount rushmore",
	"statue of liberty", "golden gate", "hollywood", "disney", "universal",

	// Традиции и культурные события
	"festival", "celebration", "ceremony", "ritual", "tradition", "custom",
	"folklore", "legend", "myth", "story", "tale", "history", "chronicle",
	"documentary", "archive", "library", "university", "academy", "institute",

	// Оборонительные сооружения
	"battlefield", "fort", "battery", "barracks", "armory", "arsenal",
	"bunker", "trench", "rampart", "bastion", "citadel", "keep", "dungeon",

	// Транспорт и инфраструктура
	"station", "terminal", "depot", "harbor", "port", "dock", "pier",
	"airport", "railway", "metro", "subway", "tram", "cable car", "funicular",

	// Развлечения
	"theater", "opera", "concert hall", "stadium", "arena", "coliseum",
	"amphitheater", "circus", "carnival", "fair", "expo",
	"zoo", "aquarium", "botanical garden", "conservatory", "greenhouse",

	// Современные ориентиры
	"skyscraper", "high-rise", "landmark", "iconic", "famous", "renowned",
	"spectacular", "magnificent", "breathtaking", "stunning", "impressive",
}

// Слова, при наличии которых заголовок сам по себе считается именем
// достопримечательности.
var titleNouns = []string{"castle", "palace", "tower", "cathedral", "temple", "monument"}

// IsLandmarkContent проверяет, что текст материала похож на рассказ
// о достопримечательности.
func IsLandmarkContent(title, content string, tags []string) bool {
	text := strings.ToLower(title + " " + content + " " + strings.Join(tags, " "))
	for _, keyword := range landmarkKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func titleSoundsLikeLandmark(title string) bool {
	lower := strings.ToLower(title)
	for _, noun := range titleNouns {
		if strings.Contains(lower, noun) {
			return true
		}
	}
	return false
}
