// Package config provides configuration parsing for splice.
//
// The configuration is stored in splice.json (comments and trailing commas
// allowed) or splice.yaml at the project root.
//
// # Configuration File Structure
//
//	{
//	  // Templates under this directory must have a table entry.
//	  "root": "app",
//	  "templates": "s3://builds/app/templates.cbor.zst",
//	  "strict": true,
//	  "workers": 8,
//	  "log": {"level": "debug", "format": "json"},
//	  "metrics": {"namespace": "splice", "subsystem": "web"},
//	  "tracing": {"name": "splice"},
//	  "serve": {"addr": "localhost:7070"},
//	  "s3": {"region": "eu-west-1", "endpoint": "http://localhost:9000"},
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Templates:", cfg.TemplatesPath())
package config
