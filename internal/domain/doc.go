// Package domain models weather station time series and the deterministic
// corrections applied to them before analysis.
//
// # Data Model
//
// A [Dataset] is one station's record set: strictly ordered timestamps, any
// number of named numeric columns, and two categorical columns derived by the
// classifiers ([Phase] and [PrecipRate]). Numeric cells are [Reading] values,
// which carry an explicit missing state instead of relying on NaN arithmetic.
//
// Every correction takes a *Dataset, clones it, mutates the clone and returns
// it. The caller's dataset is never modified, row order never changes, and no
// correction adds or drops rows. Only [Aggregate] changes cardinality.
//
// # Correction Chain
//
//	temperature ──► ClassifyPhase ──► CorrectUndercatch ──► AddWettingLoss
//	wind speed  ──► CleanWindSpeed
//	precip      ──► ClassifyPrecipRate
//
// Phase thresholds follow McCabe and Wolock (2010) as recommended by Harpold et
// al. (2017):
//
//	snow  T < -1 °C | mixed -1 °C ≤ T ≤ 3 °C | rain T > 3 °C
//
// Undercatch correction uses the Alter-shielded gauge catch ratios of Yang et
// al. (1998), also applied by Liljedahl et al. (2017). The regression is only
// calibrated up to 7 m/s, so wind is clipped there before use:
//
//	rain:  CR = exp(4.606 - 0.041 · U^0.69)
//	snow:  CR = exp(4.606 - 0.036 · U^1.75)
//	mixed: CR = 101.04 - 5.62 · U
//
// The correction factor is 100/CR, a multiplier close to 1 in calm air. A
// factor above 100 is treated as invalid and the measured value is kept.
//
// Wetting loss adds 0.15 mm to snow and 0.03 mm to other positive samples,
// after undercatch correction so the offset is not scaled.
//
// # Wind Sensor Faults
//
// Rimed or stuck anemometers report a flat zero. The fault is judged per clock
// hour (zero sum and a max-min range under 0.5) and only for hours on or
// before April 2017, after which the logger recorded fewer digits and the test
// stops being reliable. Readings above 75 m/s (WMO, Zahumensky 2004) are
// always discarded.
//
// # Aggregation
//
// Monthly and annual aggregates are only reported when more than 90% of the
// expected daily samples are present. Expected counts are days-in-month for
// monthly periods and a flat 365 for annual periods.
package domain
