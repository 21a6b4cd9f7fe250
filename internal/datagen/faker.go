package datagen

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Faker is the value library: given a semantic category and a locale it
// produces one plausible value. Locales without their own lexicon fall back
// to the en_US lexicon while keeping the locale's phone format.
type Faker struct {
	rng    *rand.Rand
	locale string
	data   lexicon
	seq    int
}

type lexicon struct {
	firstNames []string
	lastNames  []string
	streets    []string
	cities     []string
	countries  []string
	companies  []string
	words      []string
	domains    []string
	phone      string // Sprintf format taking three ints
}

var lexicons = map[string]lexicon{
	"en_US": {
		firstNames: []string{"John", "Jane", "Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"},
		lastNames:  []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Wilson", "Moore"},
		streets:    []string{"Main Street", "Oak Avenue", "Maple Drive", "Cedar Lane", "Park Road", "Elm Street"},
		cities:     []string{"Springfield", "Riverside", "Franklin", "Greenville", "Bristol", "Clinton", "Fairview", "Salem"},
		countries:  []string{"United States", "Canada", "United Kingdom", "Australia", "Ireland", "New Zealand"},
		companies:  []string{"Acme Corp", "Globex", "Initech", "Umbrella LLC", "Stark Industries", "Wayne Enterprises"},
		words:      []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "omega", "sigma", "theta", "lambda"},
		domains:    []string{"example.com", "test.com", "demo.com", "mail.com"},
		phone:      "+1-%03d-%03d-%04d",
	},
	"de_DE": {
		firstNames: []string{"Hans", "Anna", "Peter", "Greta", "Klaus", "Ingrid", "Stefan", "Monika", "Jürgen", "Sabine"},
		lastNames:  []string{"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker"},
		streets:    []string{"Hauptstraße", "Bahnhofstraße", "Gartenweg", "Schulstraße", "Lindenallee", "Bergstraße"},
		cities:     []string{"Berlin", "Hamburg", "München", "Köln", "Frankfurt", "Stuttgart", "Dresden", "Leipzig"},
		countries:  []string{"Deutschland", "Österreich", "Schweiz", "Luxemburg", "Liechtenstein"},
		companies:  []string{"Müller GmbH", "Schmidt AG", "Nordwerk", "Südtechnik", "Rheinbau", "Alpenhandel"},
		words:      []string{"haus", "baum", "wasser", "berg", "licht", "stein", "wald", "feld"},
		domains:    []string{"example.de", "test.de", "demo.de", "mail.de"},
		phone:      "+49-%03d-%03d-%04d",
	},
	"fr_FR": {
		firstNames: []string{"Jean", "Marie", "Pierre", "Sophie", "Luc", "Camille", "Antoine", "Claire", "Hugo", "Manon"},
		lastNames:  []string{"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand"},
		streets:    []string{"Rue de la Paix", "Avenue Victor Hugo", "Boulevard Saint-Michel", "Rue du Moulin", "Place de l'Église"},
		cities:     []string{"Paris", "Lyon", "Marseille", "Toulouse", "Nice", "Nantes", "Bordeaux", "Lille"},
		countries:  []string{"France", "Belgique", "Suisse", "Canada", "Luxembourg", "Monaco"},
		companies:  []string{"Martin SARL", "Dubois et Fils", "Lumière SA", "Atelier Nord", "Maison Petit"},
		words:      []string{"maison", "arbre", "eau", "montagne", "lumière", "pierre", "forêt", "champ"},
		domains:    []string{"example.fr", "test.fr", "demo.fr", "courriel.fr"},
		phone:      "+33-%03d-%03d-%04d",
	},
	"es_ES": {
		firstNames: []string{"José", "María", "Antonio", "Carmen", "Manuel", "Lucía", "Francisco", "Ana", "David", "Elena"},
		lastNames:  []string{"García", "Fernández", "González", "Rodríguez", "López", "Martínez", "Sánchez", "Pérez"},
		streets:    []string{"Calle Mayor", "Avenida de la Constitución", "Plaza España", "Calle Real", "Paseo del Prado"},
		cities:     []string{"Madrid", "Barcelona", "Valencia", "Sevilla", "Zaragoza", "Málaga", "Bilbao", "Granada"},
		countries:  []string{"España", "México", "Argentina", "Colombia", "Chile", "Perú"},
		companies:  []string{"García S.A.", "Hermanos López", "Ibérica Textil", "Meseta Alimentación", "Costa Servicios"},
		words:      []string{"casa", "árbol", "agua", "montaña", "luz", "piedra", "bosque", "campo"},
		domains:    []string{"example.es", "test.es", "demo.es", "correo.es"},
		phone:      "+34-%03d-%03d-%04d",
	},
	"ru_RU": {
		firstNames: []string{"Иван", "Мария", "Алексей", "Ольга", "Дмитрий", "Елена", "Сергей", "Анна", "Николай", "Татьяна"},
		lastNames:  []string{"Иванов", "Смирнов", "Кузнецов", "Попов", "Васильев", "Петров", "Соколов", "Михайлов"},
		streets:    []string{"улица Ленина", "проспект Мира", "улица Гагарина", "Садовая улица", "Центральная улица"},
		cities:     []string{"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург", "Казань", "Нижний Новгород"},
		countries:  []string{"Россия", "Беларусь", "Казахстан", "Армения", "Грузия"},
		companies:  []string{"ООО Ромашка", "АО Вектор", "ООО Заря", "АО Прогресс", "ООО Восход"},
		words:      []string{"дом", "дерево", "вода", "гора", "свет", "камень", "лес", "поле"},
		domains:    []string{"example.ru", "test.ru", "demo.ru", "pochta.ru"},
		phone:      "+7-%03d-%03d-%04d",
	},
	"uk_UA": {
		firstNames: []string{"Олександр", "Оксана", "Андрій", "Наталія", "Тарас", "Ірина", "Богдан", "Катерина"},
		lastNames:  []string{"Шевченко", "Бондаренко", "Коваленко", "Ткаченко", "Кравченко", "Мельник", "Шевчук"},
		streets:    []string{"вулиця Хрещатик", "проспект Свободи", "вулиця Шевченка", "Соборна вулиця"},
		cities:     []string{"Київ", "Львів", "Одеса", "Харків", "Дніпро", "Запоріжжя"},
		countries:  []string{"Україна", "Польща", "Словаччина", "Молдова", "Румунія"},
		companies:  []string{"ТОВ Світанок", "ПАТ Дніпро", "ТОВ Калина", "ПП Карпати"},
		words:      []string{"хата", "дерево", "вода", "гора", "світло", "камінь", "ліс", "поле"},
		domains:    []string{"example.ua", "test.ua", "demo.ua", "poshta.ua"},
		phone:      "+380-%03d-%03d-%04d",
	},
	"ja_JP": {
		firstNames: []string{"太郎", "花子", "健一", "美咲", "翔太", "さくら", "大輔", "結衣"},
		lastNames:  []string{"佐藤", "鈴木", "高橋", "田中", "伊藤", "渡辺", "山本", "中村"},
		streets:    []string{"中央通り", "桜町", "本町", "駅前通り", "緑が丘"},
		cities:     []string{"東京", "大阪", "名古屋", "札幌", "福岡", "京都", "横浜", "神戸"},
		countries:  []string{"日本", "韓国", "中国", "台湾", "タイ"},
		companies:  []string{"株式会社山田", "田中工業", "佐藤商事", "鈴木製作所"},
		words:      []string{"山", "川", "海", "空", "光", "石", "森", "田"},
		domains:    []string{"example.jp", "test.jp", "demo.jp", "mail.jp"},
		phone:      "+81-%03d-%03d-%04d",
	},
	"zh_CN": {
		firstNames: []string{"伟", "芳", "娜", "敏", "静", "强", "磊", "洋"},
		lastNames:  []string{"王", "李", "张", "刘", "陈", "杨", "黄", "赵"},
		streets:    []string{"人民路", "中山路", "解放路", "建设路", "和平街"},
		cities:     []string{"北京", "上海", "广州", "深圳", "成都", "杭州", "武汉", "西安"},
		countries:  []string{"中国", "日本", "韩国", "新加坡", "泰国"},
		companies:  []string{"华兴科技", "中远贸易", "东方制造", "南方物流"},
		words:      []string{"山", "水", "光", "石", "林", "田", "风", "云"},
		domains:    []string{"example.cn", "test.cn", "demo.cn", "mail.cn"},
		phone:      "+86-%03d-%03d-%04d",
	},
}

// NewFaker returns a value library for the given locale. The locale must be
// on the allow-list; locales without a dedicated lexicon use en_US data.
func NewFaker(locale string, rng *rand.Rand) (*Faker, error) {
	if !IsSupportedLocale(locale) {
		return nil, &UnsupportedLocaleError{Locale: locale}
	}
	data, ok := lexicons[locale]
	if !ok {
		data = lexicons["en_US"]
	}
	return &Faker{rng: rng, locale: locale, data: data}, nil
}

func (f *Faker) Locale() string {
	return f.locale
}

func (f *Faker) pick(values []string) string {
	return values[f.rng.Intn(len(values))]
}

func (f *Faker) FirstName() string { return f.pick(f.data.firstNames) }
func (f *Faker) LastName() string  { return f.pick(f.data.lastNames) }

func (f *Faker) Name() string {
	return f.FirstName() + " " + f.LastName()
}

// Email is guaranteed unique within one Faker instance via a running
// sequence, so unique-constrained email columns stay insertable.
func (f *Faker) Email() string {
	f.seq++
	return fmt.Sprintf("user%d_%d@%s", f.seq, f.rng.Intn(100000), f.pick(f.data.domains))
}

func (f *Faker) Phone() string {
	return fmt.Sprintf(f.data.phone, f.rng.Intn(1000), f.rng.Intn(1000), f.rng.Intn(10000))
}

func (f *Faker) Address() string {
	return fmt.Sprintf("%d %s, %s", f.rng.Intn(9999)+1, f.pick(f.data.streets), f.City())
}

func (f *Faker) City() string    { return f.pick(f.data.cities) }
func (f *Faker) Country() string { return f.pick(f.data.countries) }
func (f *Faker) Company() string { return f.pick(f.data.companies) }
func (f *Faker) Word() string    { return f.pick(f.data.words) }

func (f *Faker) Sentence() string {
	n := 4 + f.rng.Intn(5)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = f.Word()
	}
	s := strings.Join(parts, " ") + "."
	// Capitalize the first rune, not the first byte: several lexicons are
	// entirely multi-byte and slicing mid-rune corrupts the string.
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func (f *Faker) Paragraph() string {
	n := 2 + f.rng.Intn(3)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = f.Sentence()
	}
	return strings.Join(parts, " ")
}

// Text returns a sentence-ish string no longer than maxChars.
func (f *Faker) Text(maxChars int) string {
	s := f.Sentence()
	for len(s) < maxChars/2 {
		s += " " + f.Sentence()
	}
	if len(s) > maxChars {
		// Back up to a rune boundary before cutting.
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimSpace(s[:cut])
	}
	return s
}

func (f *Faker) RandomInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + f.rng.Intn(max-min+1)
}

// Decimal returns a value in [min, max) rounded to two places.
func (f *Faker) Decimal(min, max float64) float64 {
	v := min + f.rng.Float64()*(max-min)
	return float64(int(v*100)) / 100
}

func (f *Faker) Bool() bool {
	return f.rng.Intn(2) == 1
}

// DateTimeBetween returns a timestamp within [now-window, now].
func (f *Faker) DateTimeBetween(window time.Duration) time.Time {
	if window <= 0 {
		return time.Now()
	}
	back := time.Duration(f.rng.Int63n(int64(window)))
	return time.Now().Add(-back)
}

// DateThisYear returns a date within the last 365 days, formatted ISO-8601.
func (f *Faker) DateThisYear() string {
	return f.DateTimeBetween(365 * 24 * time.Hour).Format("2006-01-02")
}

// Choice returns a uniformly random element of values.
func (f *Faker) Choice(values []string) string {
	return f.pick(values)
}
