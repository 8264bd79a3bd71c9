package constants

// CompanyKeywords marks a line as a candidate counterparty name: legal-entity suffixes,
// industry-sector words and individual-proprietor suffixes.
var CompanyKeywords = []string{
	"有限公司", "股份有限公司", "有限责任公司",
	"科技", "网络", "文化", "婴童",
	"贸易", "电子商务",
	"酒店", "饭店", "餐饮", "娱乐", "百货",
	"加油站", "石油化工", "石化",
	"商行",
	"实业", "制造", "加工",
	"中心", "工作室", "经营部",
	"工艺品厂", "木制品厂", "制品厂", "加工厂",
	"电子商务商行", "电子商务网店", "纸塑制品网店",
	"茶业有限公司", "餐饮有限公司",
}

// ExclusionPatterns reject a line outright: item markers, table column headers,
// tax-authority boilerplate and the tax-summary phrases.
var ExclusionPatterns = []string{
	`\*[^*]+\*`,
	`项目|规格|单位|数量|单价|金额|税率|税额|合计|备注|开票人|下载次数|发票号码|开票日期`,
	`国家税务总局|发票监制|电子发票|普通发票|广东省税务局`,
	`价税合计|大写|小写`,
}

// FeeSuffix disqualifies a candidate line ending with it (line items such as "通行费").
const FeeSuffix = "费"

// ContextSuffixes are tried, in order, around the seller tax ID when no candidate line resolved a seller.
var ContextSuffixes = []string{"店", "商行", "有限公司", "商贸", "科技", "贸易", "酒店", "饭店", "餐饮"}

// ContextTrimChars are stripped from both ends of a seller name found near the tax ID.
const ContextTrimChars = "*,、。.\n\t\r"

// NamePrefixes are label variants stripped from the start of a party name. At most one is removed.
var NamePrefixes = []string{
	"名称:", "名称：", "名　　称:", "购买方:", "销售方:", "名　称:", "名 称:",
}

// RegistrationLabels truncate a party name at the first one found.
var RegistrationLabels = []string{
	"统一社会信用代码/纳税人识别号：", "统一社会信用代码:", "统一社会信用代码/纳税人识别号:",
}

const (
	// RoundedTotalMarker precedes the tax-inclusive total in words+figures ("…圆整 ¥1234.56").
	RoundedTotalMarker = "圆整"

	// NotShownSuffix is appended to the buyer keyword when no candidate line contains it.
	NotShownSuffix = " (not shown on invoice)"

	// ParseErrorPrefix starts the note of a record whose document could not be processed.
	ParseErrorPrefix = "parse error: "

	// Unrecognized groups records with no item description or no usable seller in the report.
	Unrecognized = "(unrecognized)"
)

// Length limits applied to extracted fields, counted in characters.
const (
	CandidateMinLen    = 5
	CandidateMaxLen    = 60
	ItemFullMaxLen     = 50
	ItemCategoryMaxLen = 30
	ContextWindow      = 100
	ContextMinLen      = 4 // seller found near the tax ID must be longer than this
)

// AmountCeiling bounds amounts taken from currency tokens; anything at or above it is noise.
const AmountCeiling = 10_000_000

// Report ranking sizes.
const (
	TopItems   = 10
	TopSellers = 5
)
