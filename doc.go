// Package promptmeta extracts AI image generation metadata from image files.
//
// Generation tools store their prompts and sampler settings in very
// different ways: a flat "Key: value" text chunk, a tool-specific JSON
// object, or a whole node graph describing the pipeline. promptmeta decides
// which tool authored an image and decodes its encoding into one normalized
// ParseResult.
//
// # Quick Start
//
// Reading metadata from an image file:
//
//	img, err := promptmeta.Open("00042.png")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(img.Result.Tool)
//	fmt.Println(img.Result.Positive)
//	for _, e := range img.Result.SettingEntries {
//		fmt.Printf("%s: %s\n", e.Key, e.Value)
//	}
//
// Parsing blobs the caller already extracted:
//
//	res := promptmeta.Parse(promptmeta.Blobs{
//		promptmeta.KeyPrompt:   promptJSON,
//		promptmeta.KeyWorkflow: workflowJSON,
//	}, promptmeta.WithDimensions(1024, 1024))
//
// # Supported Tools
//
//   - A1111 webUI and compatible: flat "parameters" text
//   - ComfyUI: API-encoded "prompt" graph and editor-encoded "workflow" graph
//   - StableSwarmUI: "sui_image_params" JSON
//   - Fooocus: JSON in the Comment chunk
//   - NovelAI: legacy Description/Comment pairs and stealth pixel payloads
//
// Classifiers run in a fixed order and the first that recognizes its
// encoding wins. The order they were tried in is recorded in
// ParseResult.DetectionPath and the heuristics that matched in
// ParseResult.Evidence.
//
// # Supported Containers
//
//   - PNG: tEXt, zTXt and iTXt chunks
//   - JPEG: EXIF in APP1 (ImageDescription, Software, UserComment)
//   - WebP: EXIF chunk
//   - TXT: a flat parameters file
//
// # Node Graphs
//
// ComfyUI graphs may contain many disconnected pipelines, cycles and links
// to nodes that no longer exist. The resolver walks upstream from every
// output node, keeps the pipeline that reaches the most nodes and treats
// missing nodes as dead ends. Recursive heuristics are bounded by Limits,
// set with WithLimits.
//
// # Error Handling
//
// Parse never fails. Input that matches no known encoding yields a result
// whose Tool is ToolUnknown, with the blob text kept in Raw and RawParts.
//
// Open distinguishes between fatal errors and warnings:
//
//   - Fatal errors prevent reading entirely (file not found, unsupported format)
//   - Warnings indicate non-fatal container issues (corrupt zTXt, truncated EXIF)
//
// Check img.Warnings for issues encountered while reading:
//
//	for _, w := range img.Warnings {
//		log.Printf("Warning: %s", w)
//	}
//
// # Concurrency
//
// Parse keeps no state between calls and may run on any number of
// goroutines. OpenMany reads files in parallel, and Cache memoizes results
// for images that share identical metadata.
package promptmeta
