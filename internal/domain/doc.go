// Package domain models NOAA Storm Events data for wind-history lookups.
//
// # Data Source
//
// Events come from the NOAA National Centers for Environmental Information
// (NCEI) Storm Events Database, published as yearly gzip-compressed CSV files
// under https://www.ncei.noaa.gov/pub/data/swdi/stormevents/csvfiles/. Files
// are named
//
//	StormEvents_details-ftp_v1.0_d<YYYY>_c<YYYYMMDD>.csv.gz
//
// where d<YYYY> is the data year and c<YYYYMMDD> is the creation date of the
// export. NCEI reprocesses years, so several files may exist for one year;
// the latest creation suffix is authoritative. There is no index API — the
// available files are discovered by scanning the plain directory listing.
//
// # CSV Conventions
//
// Columns of interest (the details file carries ~50):
//
//	EVENT_TYPE       "Thunderstorm Wind", "High Wind", "Hurricane", ...
//	STATE            full uppercase state name, e.g. "NEW YORK"
//	CZ_NAME          county or forecast-zone name, e.g. "SUFFOLK" or "SUFFOLK CO"
//	BEGIN_DATE_TIME  "28-APR-15 15:30:00" or "04/28/2015 15:30:00" depending
//	                 on the export vintage
//	MAGNITUDE        wind speed as a decimal number
//	MAGNITUDE_TYPE   "EG" (estimated gust) and "MG" (measured gust) are in
//	                 knots; other values are already miles per hour
//	BEGIN_LAT/LON    WGS-84 coordinates, frequently empty for zone-based rows
//
// Zone-based rows name forecast zones rather than counties, so CZ_NAME only
// approximately corresponds to the county a geocoder returns. County matching
// is therefore fuzzy by design; see [CountyMatches].
package domain
