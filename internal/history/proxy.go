package history

var proxyRenewable = []float64{
	4500, 4800, 5100, 5400, 5800, 6200, 6700, 7200, 7800, 8500,
	9200, 10000, 10800, 11700, 12700, 13800, 15000, 16300, 17700,
	19200, 20800, 22500, 24300, 26200,
}

var proxyTotal = []float64{
	25000, 26500, 28100, 29800, 31600, 33500, 35500, 37600, 39900,
	42300, 44800, 47500, 50300, 53300, 56500, 59900, 63500, 67300,
	71300, 75600, 80100, 84900, 90000, 95400,
}

// Proxy returns the built-in 2000–2023 regional proxy series, used when no
// country dataset is configured.
func Proxy() *Dataset {
	records := make([]Record, len(proxyRenewable))
	for i := range records {
		records[i] = Record{
			Year:              2000 + i,
			RenewableCapacity: proxyRenewable[i],
			TotalCapacity:     proxyTotal[i],
		}
	}
	d, err := New(records)
	if err != nil {
		panic(err)
	}
	return d
}
