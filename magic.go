package tsfile

// Magic is the 7-byte sequence at offset 0 and at offset file_size-7 of
// every TsFile: "TsFile" followed by a version nibble (spec.md §6).
var Magic = [7]byte{'T', 's', 'F', 'i', 'l', 'e', 0x03}
