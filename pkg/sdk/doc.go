// Package docdex embeds the docdex keyword retrieval engine in a Go program.
//
// Documents (PDF, DOCX, PPTX, XLSX, Markdown, plain text) are extracted, split
// into overlapping chunks and indexed by keyword set. Queries are answered by
// Jaccard similarity between the query keywords and each chunk.
//
//	client, _ := docdex.New(ctx, docdex.WithSQLite("docdex.db"))
//	defer client.Close()
//
//	doc, _ := client.Ingest(ctx, docdex.Upload{
//	    Filename:    "handbook.pdf",
//	    ContentType: "application/pdf",
//	    Data:        data,
//	})
//	hits, _ := client.Search(ctx, "vacation policy", 5)
//
// Chat answers need a completion provider:
//
//	client, _ := docdex.New(ctx,
//	    docdex.WithRedis("localhost:6379", ""),
//	    docdex.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "", "gpt-4o-mini"),
//	)
//	reply, _ := client.Chat(ctx, "How many vacation days do I get?", "")
package docdex
