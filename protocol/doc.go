// Package protocol encodes socket.io packets for an engine.io connection.
//
// A packet travels as one text message followed by its binary attachments:
//
//     <packet type>[<# of binary attachments>-][<namespace>,][<acknowledgment id>][JSON-stringified payload without binary]
//     [<binary attachment>]
//
// or as a real example:
//
//     51-/admin,456["project:delete",{"_placeholder":true,"num":0}]
//     <0x01 0x02 0x03>
//
// Binary leaves of the packet data are Blob values. DeconstructPacket swaps
// each one for a Placeholder and collects the bytes, ReconstructPacket puts
// them back.
package protocol
