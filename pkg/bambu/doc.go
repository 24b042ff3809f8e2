/*
Package bambu reads the filament metadata Bambu Lab stores on the MIFARE
Classic 1K tags embedded in its spools.

Every sector is locked with a Key-A derived from the tag UID:

	OKM    = HKDF-SHA256(salt = UID, IKM = master secret, info = "RFID-A\x00", L = sectors*6)
	Key-A  = OKM[6*sector : 6*sector+6]

The master secret is supplied by the caller (see LoadSecretHexFile); it is
never compiled in.

# Block Map

	Block  2: material, NUL padded                ("PLA")
	Block  4: detailed name, NUL padded           ("PLA Basic")
	Block  5: [0:3]  color RGB
	          [4:6]  spool weight, grams, LE uint16
	          [8:12] filament diameter, mm, LE float32
	Block 13: production date text               ("24_01_15")
	Block 16: [4:7]  second color RGB, 000000 = none

Text fields are trimmed of bytes <= 0x20 at both ends. An empty material
becomes "Unknown"; an empty name falls back to the material.

# Production Date

The date text is split on '_' and empty tokens dropped. With fewer than
three tokens the date is "Unknown". Otherwise it renders as
"20<YY>/<MM>/<DD>" where MM and DD are padded to two characters and then
cut to their last two (DateLastTwo): "24_3_7" -> "2024/03/07",
"24_123_07" -> "2024/23/07". DateStrict turns over-long tokens into
"Unknown" instead.
*/
package bambu
