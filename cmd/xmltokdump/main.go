// Command xmltokdump drives the tokenizer over a file and logs one line
// per event, plus one line per attribute of a start element. It exists to exercise the public API end to end, the same
// role the teacher's perf_test/main.go played for xml-streamer, stripped
// of its XPath-query and profiling machinery (there is no tree here to
// query, and no channel to benchmark).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hforge/goxml"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <file.xml>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("xmltokdump: %v", err)
	}
	defer f.Close()

	p := xmltok.NewFromReader(f)

	var depth int
	for {
		ev := p.Next()
		switch ev.Kind {
		case xmltok.EventStartElement:
			log.Printf("%*sSTART {%s}%s", depth*2, "", ev.URI, *ev.Name)
			for _, a := range ev.Attributes {
				log.Printf("%*s  @{%s}%s=%q", depth*2, "", a.URI, *a.Name, a.Value)
			}
			depth++
		case xmltok.EventEndElement:
			depth--
			log.Printf("%*sEND {%s}%s", depth*2, "", ev.URI, *ev.Name)
		case xmltok.EventText:
			log.Printf("%*sTEXT %q", depth*2, "", ev.Text)
		case xmltok.EventComment:
			log.Printf("%*sCOMMENT %q", depth*2, "", ev.Text)
		case xmltok.EventCData:
			log.Printf("%*sCDATA %q", depth*2, "", ev.Text)
		case xmltok.EventPI:
			log.Printf("%*sPI %s %q", depth*2, "", ev.Target, ev.Content)
		case xmltok.EventXMLDecl:
			log.Printf("XMLDECL version=%s encoding=%s standalone=%s", ev.Version, ev.Encoding, ev.Standalone)
		case xmltok.EventDocType:
			log.Printf("DOCTYPE %s %s", ev.DocTypeName, ev.DocType.String())
		case xmltok.EventEndDocument:
			log.Println("EOF")
			return
		case xmltok.EventError:
			log.Fatalf("xmltokdump: %v", ev.Err)
		}
	}
}
