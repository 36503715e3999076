package airspace

import "airdata/internal/core/types"

// SnapshotDate is when the fallback directory below was captured.
const SnapshotDate = "2021-12-07"

// snapshot is served when the live listing cannot be fetched.
var snapshot = []types.DirectoryEntry{
	{Key: "al_asp.xml", Size: 2817},
	{Key: "ar_asp.xml", Size: 262968},
	{Key: "at_asp.xml", Size: 20933},
	{Key: "au_asp.xml", Size: 1686931},
	{Key: "ba_asp.xml", Size: 20865},
	{Key: "be_asp.xml", Size: 70624},
	{Key: "bg_asp.xml", Size: 4696},
	{Key: "bh_asp.xml", Size: 23073},
	{Key: "br_asp.xml", Size: 250204},
	{Key: "ca_asp.xml", Size: 1011153},
	{Key: "ch_asp.xml", Size: 28961},
	{Key: "co_asp.xml", Size: 38061},
	{Key: "cz_asp.xml", Size: 143524},
	{Key: "de_asp.xml", Size: 217490},
	{Key: "dk_asp.xml", Size: 19854},
	{Key: "ee_asp.xml", Size: 17761},
	{Key: "es_asp.xml", Size: 255423},
	{Key: "fi_asp.xml", Size: 25058},
	{Key: "fr_asp.xml", Size: 319716},
	{Key: "gb_asp.xml", Size: 1410038},
	{Key: "gr_asp.xml", Size: 55492},
	{Key: "hr_asp.xml", Size: 135531},
	{Key: "hu_asp.xml", Size: 52526},
	{Key: "ie_asp.xml", Size: 61167},
	{Key: "is_asp.xml", Size: 10499},
	{Key: "it_asp.xml", Size: 1063320},
	{Key: "jp_asp.xml", Size: 540727},
}

// Snapshot returns a copy of the fallback directory.
func Snapshot() []types.DirectoryEntry {
	return append([]types.DirectoryEntry(nil), snapshot...)
}
