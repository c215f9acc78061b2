/*
Package iso7816 implements the command/response layer of ISO/IEC 7816-4 as
used by contactless payment cards.

It covers APDU encoding (short and extended lengths), response parsing,
Class, Instruction and Status Word analysis, the SELECT and READ RECORD
builders, and a Client that turns one logical command into the exchanges
the card requires.

# Exchanges

Communication is strictly synchronous: the host sends a C-APDU and the card
answers with an R-APDU ending in SW1 SW2.

  - '9000': success.
  - '61XX': XX more bytes are available through GET RESPONSE.
  - '6CXX': wrong Le, XX is the length to ask for.

The Client resolves the last two transparently and returns every exchange in
a Trace:

	client := iso7816.NewClient(transceiver)
	trace, err := client.Send(ctx, iso7816.SelectByAID(iso7816.MustClass(0x00), aid))
	if err != nil {
	    return err // transport failure
	}
	if trace.Completed() {
	    entries := tlv.Decode(trace.Data())
	    ...
	}
	log.Println(trace.Describe())
*/
package iso7816
