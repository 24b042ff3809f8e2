/*
Package rfid talks to MIFARE Classic 1K tags through PC/SC contactless
readers, or through a file-backed memory image that behaves like one.

It provides:
  - PC/SC card transmit helpers (GET DATA UID, LOAD KEY, GENERAL AUTHENTICATE, READ BINARY)
  - The ClassicTag contract (Connect, AuthenticateKeyA, ReadBlock, Close) with PCSCTag and ImageTag
  - Sessions that authenticate sectors on demand and remember them for the presentment
  - Tag classification from the ATR (Classic 1K, NTAG213/215/216)
  - Full-tag diagnostic dumps

# Memory Layout

A 1K tag has 16 sectors of 4 blocks, 16 bytes per block (1024 bytes,
blocks 0-63). Block 0 holds the UID. The last block of every sector is the
trailer:

	bytes 0-5:   Key-A (reads back as zeros)
	bytes 6-9:   access bits (transport default FF 07 80 69)
	bytes 10-15: Key-B

# Authentication

The chip keeps one crypto session at a time: authenticating sector N drops
sector M. Session only remembers which sectors succeeded, so callers should
visit blocks in ascending order (reads and dumps do).

PC/SC flow for one sector:

	Command:  FF 82 00 <slot> 06 <Key-A(6)>                 LOAD KEY
	Command:  FF 86 00 00 05 01 00 <block> 60 <slot>        GENERAL AUTHENTICATE (Key-A)
	Command:  FF B0 00 <block> 10                           READ BINARY
	Response: <data(16)> 90 00

Fail states:

	SW=6300: key rejected
	SW=6982: block read without authenticating its sector
	SW=6986: no key loaded in slot

# Error Kinds

Failures are classified with errors.Is against ErrHardwareUnavailable,
ErrAuthentication, ErrRead and ErrSession. Per-block failures are
*BlockError values; reader status words are *SWError values.
*/
package rfid
