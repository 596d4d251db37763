package geo

// Catalog is the fixed set of UK postcodes probed during a collection run,
// ordered by region. The order is canonical: the first entry seeds an empty
// run and ties in the maximin selection break toward earlier entries.
var Catalog = []string{
	// London and South East
	"SW1A 1AA", "EC1A 1BB", "E1 6AN", "W1A 1AA", "N1 9AG", "SE1 9SG",
	"CR0 1EA", "BR1 1JH", "KT1 1EU", "GU1 1AA", "RH1 1BA", "TN1 1HE",
	"ME1 1XX", "CT1 1AA",
	// South West
	"BS1 1AA", "BA1 1AA", "EX1 1AA", "PL1 1AA", "TQ1 1AA", "TR1 1AA",
	"BH1 1AA", "SO14 0AA", "PO1 1AA",
	// Midlands
	"B1 1AA", "CV1 1AA", "LE1 1AA", "NG1 1AA", "DE1 1AA", "NN1 1AA",
	"MK1 1AA", "OX1 1AA", "WR1 1AA", "ST1 1AA", "TF1 1AA",
	// North West
	"M1 1AA", "L1 1AA", "WA1 1AA", "CH1 1AA", "PR1 1AA", "BB1 1AA",
	"FY1 1AA", "LA1 1AA", "CA1 1AA",
	// Yorkshire and Humber
	"LS1 1AA", "S1 1AA", "BD1 1AA", "HX1 1AA", "HD1 1AA", "WF1 1AA",
	"DN1 1AA", "HU1 1AA", "YO1 1AA",
	// North East
	"NE1 1AA", "SR1 1AA", "DH1 1AA", "TS1 1AA", "DL1 1AA",
	// Scotland
	"EH1 1AA", "G1 1AA", "AB10 1AA", "DD1 1AA", "PA1 1AA", "KY1 1AA",
	"FK1 1AA", "KA1 1AA", "IV1 1AA", "PH1 1AA", "TD1 1AA", "DG1 1AA",
	// Wales
	"CF10 1AA", "SA1 1AA", "NP20 1AA", "LL11 1AA", "LD1 1AA", "SY23 1AA",
	"LL57 1AA", "CF31 1AA",
	// Northern Ireland
	"BT1 1AA", "BT48 6AA", "BT35 6AA", "BT30 6AA", "BT74 6AA", "BT62 1AA",
	"BT41 1AA",
}

// Coordinate is an approximate centroid for a postcode outward area.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Coordinates maps outward postcode areas to approximate centroids. Entries
// without a centroid are still probed; distance to them falls back to the
// unknown-distance sentinel.
var Coordinates = map[string]Coordinate{
	// London and South East
	"SW1A": {51.5014, -0.1419},
	"EC1A": {51.5174, -0.0933},
	"E1":   {51.5154, -0.0649},
	"W1A":  {51.5152, -0.1441},
	"N1":   {51.5389, -0.1025},
	"SE1":  {51.5045, -0.0865},
	"CR0":  {51.3727, -0.1099},
	"BR1":  {51.4060, 0.0140},
	"KT1":  {51.4123, -0.3006},
	"GU1":  {51.2362, -0.5704},
	"RH1":  {51.2407, -0.1680},
	"TN1":  {51.1320, 0.2630},
	"ME1":  {51.3889, 0.5050},
	"CT1":  {51.2802, 1.0789},
	// South West
	"BS1":  {51.4545, -2.5879},
	"BA1":  {51.3811, -2.3590},
	"EX1":  {50.7184, -3.5339},
	"PL1":  {50.3755, -4.1427},
	"TQ1":  {50.4619, -3.5253},
	"TR1":  {50.2632, -5.0510},
	"BH1":  {50.7192, -1.8808},
	"SO14": {50.9097, -1.4044},
	"PO1":  {50.8198, -1.0880},
	// Midlands
	"B1":  {52.4862, -1.8904},
	"CV1": {52.4081, -1.5106},
	"LE1": {52.6369, -1.1398},
	"NG1": {52.9548, -1.1581},
	"DE1": {52.9225, -1.4746},
	"NN1": {52.2405, -0.9027},
	"MK1": {52.0406, -0.7594},
	"OX1": {51.7520, -1.2577},
	"WR1": {52.1936, -2.2210},
	"ST1": {53.0027, -2.1794},
	"TF1": {52.6766, -2.4447},
	// North West
	"M1":  {53.4808, -2.2426},
	"L1":  {53.4084, -2.9916},
	"WA1": {53.3900, -2.5970},
	"CH1": {53.1905, -2.8910},
	"PR1": {53.7632, -2.7031},
	"BB1": {53.7480, -2.4821},
	"FY1": {53.8175, -3.0536},
	"LA1": {54.0465, -2.8010},
	"CA1": {54.8951, -2.9382},
	// Yorkshire and Humber
	"LS1": {53.8008, -1.5491},
	"S1":  {53.3811, -1.4701},
	"BD1": {53.7960, -1.7594},
	"HX1": {53.7256, -1.8632},
	"HD1": {53.6458, -1.7850},
	"WF1": {53.6830, -1.4990},
	"DN1": {53.5228, -1.1288},
	"HU1": {53.7457, -0.3367},
	"YO1": {53.9600, -1.0873},
	// North East
	"NE1": {54.9783, -1.6178},
	"SR1": {54.9069, -1.3838},
	"DH1": {54.7761, -1.5733},
	"TS1": {54.5742, -1.2350},
	"DL1": {54.5253, -1.5510},
	// Scotland
	"EH1":  {55.9533, -3.1883},
	"G1":   {55.8642, -4.2518},
	"AB10": {57.1497, -2.0943},
	"DD1":  {56.4620, -2.9707},
	"PA1":  {55.8456, -4.4239},
	"KY1":  {56.1122, -3.1681},
	"FK1":  {56.0019, -3.7839},
	"KA1":  {55.6114, -4.4956},
	"IV1":  {57.4778, -4.2247},
	"PH1":  {56.3960, -3.4373},
	"TD1":  {55.6197, -2.8078},
	"DG1":  {55.0700, -3.6053},
	// Wales
	"CF10": {51.4816, -3.1791},
	"SA1":  {51.6214, -3.9436},
	"NP20": {51.5842, -2.9977},
	"LL11": {53.0462, -3.0042},
	"LD1":  {52.2416, -3.3769},
	"SY23": {52.4140, -4.0818},
	"LL57": {53.2280, -4.1290},
	"CF31": {51.5074, -3.5769},
	// Northern Ireland
	"BT1":  {54.5973, -5.9301},
	"BT48": {54.9966, -7.3086},
	"BT35": {54.1751, -6.3402},
	"BT30": {54.3286, -5.7134},
	"BT74": {54.3444, -7.6334},
	"BT62": {54.4500, -6.3833},
	"BT41": {54.7144, -6.2167},
}
